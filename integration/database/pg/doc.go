// Package pg provides PostgreSQL connection management with migrations
// and health checking for the user and resume storage.
//
// Connect creates a pgxpool with retry logic and verifies connectivity
// before returning. Migrate applies goose SQL migrations through the
// pgx stdlib adapter. Error classification helpers (IsNotFoundError,
// IsDuplicateKeyError, IsForeignKeyViolationError) let repositories map
// driver errors to domain errors without importing pgconn everywhere.
package pg
