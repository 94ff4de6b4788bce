// Package cvgen generates resume content with an LLM: work experience
// bullet points, skill lists, and professional summaries.
//
// Model output that should be a JSON array frequently is not, so list
// responses go through a three-tier fallback parser before anything is
// returned to the client. Per-document conversation history is kept in
// the dialog store so follow-up generations can build on earlier ones.
package cvgen
