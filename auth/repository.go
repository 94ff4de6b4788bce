package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/cvbuilder/integration/database/pg"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

// User is an account row.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	FullName     string
	GoogleID     string
	IsPremium    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository is the persistence surface the auth service needs.
type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	SetGoogleID(ctx context.Context, userID int64, googleID string) error
}

// PostgresRepository stores users in PostgreSQL via pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a user repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, coalesce(google_id, ''), is_premium, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.GoogleID, &u.IsPremium, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *PostgresRepository) GetByEmailOrGoogleID(ctx context.Context, email, googleID string) (User, error) {
	return scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1 OR google_id = $2`, email, googleID))
}

func (r *PostgresRepository) Create(ctx context.Context, user User) (User, error) {
	created, err := scanUser(r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, full_name, google_id)
		 VALUES ($1, $2, $3, nullif($4, ''))
		 RETURNING `+userColumns,
		user.Email, user.PasswordHash, user.FullName, user.GoogleID))
	// Two concurrent signups can both pass the existence check; the
	// unique index settles it.
	if pg.IsDuplicateKeyError(err) {
		return User{}, ErrUserExists
	}
	return created, err
}

func (r *PostgresRepository) SetGoogleID(ctx context.Context, userID int64, googleID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET google_id = $1, updated_at = now() WHERE id = $2`, googleID, userID)
	return err
}
