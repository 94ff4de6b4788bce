package resume

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound covers both a missing resume and one owned by another
// user; callers cannot tell the two apart.
var ErrNotFound = errors.New("resume not found")

// Repository is the persistence surface the resume handlers need.
type Repository interface {
	Create(ctx context.Context, userID int64, in Input) (Resume, error)
	ListByUser(ctx context.Context, userID int64) ([]Resume, error)
	Get(ctx context.Context, userID, resumeID int64) (Resume, error)
	Update(ctx context.Context, userID, resumeID int64, in Input) (Resume, error)
	Delete(ctx context.Context, userID, resumeID int64) error
}

// PostgresRepository stores resumes in PostgreSQL via pgx. Mutations run
// in a transaction; any failure rolls back before the error surfaces.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository creates a resume repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const resumeColumns = `id, user_id, name,
	coalesce(phone, ''), coalesce(city, ''), coalesce(state, ''),
	coalesce(country, ''), coalesce(postal_code, ''),
	coalesce(job_title, ''), coalesce(summary, ''),
	skills, experience, education, certifications, projects, languages,
	coalesce(linkedin_url, ''), coalesce(github_url, ''), coalesce(portfolio_url, ''),
	template_id, theme_color, created_at, updated_at`

func scanResume(row pgx.Row) (Resume, error) {
	var r Resume
	err := row.Scan(
		&r.ID, &r.UserID, &r.Name,
		&r.Phone, &r.City, &r.State,
		&r.Country, &r.PostalCode,
		&r.JobTitle, &r.Summary,
		&r.Skills, &r.Experience, &r.Education, &r.Certifications, &r.Projects, &r.Languages,
		&r.LinkedinURL, &r.GithubURL, &r.PortfolioURL,
		&r.TemplateID, &r.ThemeColor, &r.CreatedAt, &r.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Resume{}, ErrNotFound
	}
	if err != nil {
		return Resume{}, err
	}
	return r, nil
}

func (repo *PostgresRepository) Create(ctx context.Context, userID int64, in Input) (Resume, error) {
	r := newResume(userID, in)

	tx, err := repo.pool.Begin(ctx)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback(ctx) // Safe even after commit.

	created, err := scanResume(tx.QueryRow(ctx,
		`INSERT INTO resumes (
			user_id, name, phone, city, state, country, postal_code,
			job_title, summary, skills, experience, education,
			certifications, projects, languages,
			linkedin_url, github_url, portfolio_url, template_id, theme_color
		 ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		 RETURNING `+resumeColumns,
		r.UserID, r.Name, r.Phone, r.City, r.State, r.Country, r.PostalCode,
		r.JobTitle, r.Summary, r.Skills, r.Experience, r.Education,
		r.Certifications, r.Projects, r.Languages,
		r.LinkedinURL, r.GithubURL, r.PortfolioURL, r.TemplateID, r.ThemeColor,
	))
	if err != nil {
		return Resume{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Resume{}, err
	}
	return created, nil
}

func (repo *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]Resume, error) {
	rows, err := repo.pool.Query(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resumes := []Resume{}
	for rows.Next() {
		r, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		resumes = append(resumes, r)
	}
	return resumes, rows.Err()
}

func (repo *PostgresRepository) Get(ctx context.Context, userID, resumeID int64) (Resume, error) {
	return scanResume(repo.pool.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2`, resumeID, userID))
}

func (repo *PostgresRepository) Update(ctx context.Context, userID, resumeID int64, in Input) (Resume, error) {
	tx, err := repo.pool.Begin(ctx)
	if err != nil {
		return Resume{}, err
	}
	defer tx.Rollback(ctx)

	current, err := scanResume(tx.QueryRow(ctx,
		`SELECT `+resumeColumns+` FROM resumes WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		resumeID, userID))
	if err != nil {
		return Resume{}, err
	}

	in.apply(&current)

	updated, err := scanResume(tx.QueryRow(ctx,
		`UPDATE resumes SET
			name = $1, phone = $2, city = $3, state = $4, country = $5,
			postal_code = $6, job_title = $7, summary = $8,
			skills = $9, experience = $10, education = $11,
			certifications = $12, projects = $13, languages = $14,
			linkedin_url = $15, github_url = $16, portfolio_url = $17,
			template_id = $18, theme_color = $19, updated_at = now()
		 WHERE id = $20 AND user_id = $21
		 RETURNING `+resumeColumns,
		current.Name, current.Phone, current.City, current.State, current.Country,
		current.PostalCode, current.JobTitle, current.Summary,
		current.Skills, current.Experience, current.Education,
		current.Certifications, current.Projects, current.Languages,
		current.LinkedinURL, current.GithubURL, current.PortfolioURL,
		current.TemplateID, current.ThemeColor,
		resumeID, userID,
	))
	if err != nil {
		return Resume{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Resume{}, err
	}
	return updated, nil
}

func (repo *PostgresRepository) Delete(ctx context.Context, userID, resumeID int64) error {
	tx, err := repo.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`DELETE FROM resumes WHERE id = $1 AND user_id = $2`, resumeID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}
