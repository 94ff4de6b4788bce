package cvgen

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dmitrymomot/cvbuilder/core/dialog"
	"github.com/dmitrymomot/cvbuilder/core/logger"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("openai api key is required")

// DefaultModel balances quality and cost for short structured output.
const DefaultModel = openai.ChatModelGPT4oMini

// Generation parameters tuned per endpoint.
const (
	generationTemperature = 0.6
	maxTokensExperience   = 400
	maxTokensSkills       = 300
	maxTokensSummary      = 600
)

// WorkExperience is one prior position referenced in prompts.
type WorkExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description,omitempty"`
}

// Generator produces resume content via chat completions.
type Generator struct {
	client openai.Client
	model  string
	dialog *dialog.Store
	log    *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator, *[]option.RequestOption)

// WithModel overrides the chat model.
func WithModel(model string) GeneratorOption {
	return func(g *Generator, _ *[]option.RequestOption) {
		if model != "" {
			g.model = model
		}
	}
}

// WithDialogStore enables per-document conversation continuity.
func WithDialogStore(store *dialog.Store) GeneratorOption {
	return func(g *Generator, _ *[]option.RequestOption) {
		g.dialog = store
	}
}

// WithLogger sets the generator logger.
func WithLogger(log *slog.Logger) GeneratorOption {
	return func(g *Generator, _ *[]option.RequestOption) {
		if log != nil {
			g.log = log
		}
	}
}

// WithClientOptions appends extra OpenAI client options, e.g. a custom
// base URL or HTTP client.
func WithClientOptions(opts ...option.RequestOption) GeneratorOption {
	return func(_ *Generator, clientOpts *[]option.RequestOption) {
		*clientOpts = append(*clientOpts, opts...)
	}
}

// NewGenerator creates a Generator with the given API key.
func NewGenerator(apiKey string, opts ...GeneratorOption) (*Generator, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	g := &Generator{
		model: DefaultModel,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	clientOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	for _, opt := range opts {
		opt(g, &clientOpts)
	}
	g.client = openai.NewClient(clientOpts...)
	return g, nil
}

// ExperienceParams describes the position to generate bullet points for.
// DocumentID, when set, threads the exchange through the dialog store.
type ExperienceParams struct {
	JobTitle   string
	Company    string
	Location   string
	Role       string
	StartDate  string
	EndDate    string
	DocumentID string
}

// GenerateWorkExperience produces bullet points for one position.
func (g *Generator) GenerateWorkExperience(ctx context.Context, p ExperienceParams) ([]string, error) {
	prompt := fmt.Sprintf(`Generate 20 specific work experience bullet points for:

Job Title: %s
Company: %s
Location: %s
Role/Department: %s
Duration: %s to %s

Make bullet points specifically relevant to %q at %q.

Requirements:
- 10-20 words each
- According to the job title and experience level
- Specific achievements with metrics
- Role-specific responsibilities
- Industry context consideration
- Use action verbs

Return as JSON array of strings.`,
		p.JobTitle, p.Company, p.Location, p.Role, p.StartDate, p.EndDate,
		p.JobTitle, p.Company)

	content, err := g.complete(ctx, p.DocumentID,
		"You are a professional CV expert. Generate specific work experience bullet points.",
		prompt, maxTokensExperience)
	if err != nil {
		return nil, err
	}

	return parseList(content), nil
}

// SkillsParams describes the experience to derive skills from.
type SkillsParams struct {
	Experience []WorkExperience
	DocumentID string
}

// GenerateSkills produces a skill list matching the given experience
// and any earlier conversation for the document.
func (g *Generator) GenerateSkills(ctx context.Context, p SkillsParams) ([]string, error) {
	prompt := fmt.Sprintf(`Based on our previous conversation about work experience, generate 15-20 highly relevant professional skills.
Analyze the job titles, companies, and responsibilities mentioned and generate skills that are:
- DIRECTLY relevant to those specific roles and industries
- Both technical and soft skills matching the experience level
- Specific to the career path discussed, not generic
- Appropriate for the industry and seniority level
- Work Experience: %s
Return as JSON array of strings.`, formatExperience(p.Experience))

	content, err := g.complete(ctx, p.DocumentID,
		"You are a professional CV expert. Based on the work experience context, generate highly relevant and specific skills.",
		prompt, maxTokensSkills)
	if err != nil {
		return nil, err
	}

	return parseList(content), nil
}

// SummaryParams describes the CV to summarize.
type SummaryParams struct {
	Name       string
	Skills     []string
	Experience []WorkExperience
}

// GenerateSummary produces one professional summary as free text.
func (g *Generator) GenerateSummary(ctx context.Context, p SummaryParams) (string, error) {
	skills := p.Skills
	if len(skills) > 8 {
		skills = skills[:8]
	}

	prompt := fmt.Sprintf(`Create 1 professional summary (50-80 words) for this person based on their CV data:

Key Skills: %s
Work Experience: %s

Requirements:
- Exactly 50-80 words
- Professional tone
- Highlight key strengths and achievements
- Focus on value proposition
- Write in third person

Return as a JSON array of strings (each string = one full summary).`,
		strings.Join(skills, ", "), formatExperience(p.Experience))

	return g.complete(ctx, "",
		"You are a professional CV expert. Generate professional summaries.",
		prompt, maxTokensSummary)
}

// complete runs one chat completion, threading dialog history in and
// recording the exchange when a document id is given.
func (g *Generator) complete(ctx context.Context, documentID, system, prompt string, maxTokens int64) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(system),
	}
	for _, m := range g.history(ctx, documentID) {
		switch m.Role {
		case "assistant":
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(prompt))

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       g.model,
		Messages:    messages,
		Temperature: openai.Float(generationTemperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	g.record(ctx, documentID, prompt, content)
	return content, nil
}

func (g *Generator) history(ctx context.Context, documentID string) []dialog.ModelMessage {
	if g.dialog == nil || documentID == "" {
		return nil
	}
	return g.dialog.ModelMessages(ctx, documentID)
}

// record appends the exchange to the document's dialog. Best effort:
// losing continuity is acceptable, failing the generation is not.
func (g *Generator) record(ctx context.Context, documentID, prompt, reply string) {
	if g.dialog == nil || documentID == "" {
		return
	}
	if err := g.dialog.AddMessage(ctx, documentID, "user", prompt); err != nil {
		g.log.WarnContext(ctx, "dialog write dropped", logger.Error(err))
		return
	}
	if err := g.dialog.AddMessage(ctx, documentID, "assistant", reply); err != nil {
		g.log.WarnContext(ctx, "dialog write dropped", logger.Error(err))
	}
}

func formatExperience(exp []WorkExperience) string {
	var b strings.Builder
	for _, e := range exp {
		fmt.Fprintf(&b, "%s at %s (%s). ", e.Title, e.Company, e.Duration)
	}
	return b.String()
}
