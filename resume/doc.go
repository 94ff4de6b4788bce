// Package resume implements resume CRUD for authenticated users.
//
// Reads over the HTTP API are cached per user; every mutation purges the
// owning user's cached responses via the scope tag embedded in the cache
// key. All ownership checks are enforced in SQL, so a user can never see
// or touch another user's resumes.
package resume
