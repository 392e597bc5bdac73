package database

import (
	"context"
	"strings"
	"time"

	"go-job-extractor/internal/models"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository mirrors saved job records into Postgres and serves the
// listing API from there.
type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse database url")
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode does not support prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "database unreachable")
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS jobs (
			id BIGSERIAL PRIMARY KEY,
			file_index INTEGER NOT NULL,
			link TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL DEFAULT '',
			company TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			technologies TEXT[] NOT NULL DEFAULT '{}',
			visa_sponsorship TEXT NOT NULL DEFAULT 'unknown',
			salary TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			remote TEXT NOT NULL DEFAULT 'unknown',
			experience_level TEXT NOT NULL DEFAULT 'unknown',
			extraction_error TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			requirements_html TEXT NOT NULL DEFAULT '',
			scraped_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs(scraped_at DESC);
	`)
	if err != nil {
		return errors.Wrap(err, "ensure schema")
	}
	return nil
}

// SaveJob inserts rec unless its link is already present. It reports
// whether a row was written.
func (r *Repository) SaveJob(ctx context.Context, index int, rec models.JobRecord) (bool, error) {
	technologies := rec.Technologies
	if technologies == nil {
		technologies = []string{}
	}
	tag, err := r.db.Exec(ctx, `
		INSERT INTO jobs (file_index, link, title, company, description, technologies, visa_sponsorship,
			salary, location, remote, experience_level, extraction_error, source, requirements_html, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (link) DO NOTHING`,
		index, rec.Link, rec.Title, rec.Company, rec.Description, technologies, string(rec.VisaSponsorship),
		rec.Salary, rec.Location, string(rec.Remote), string(rec.ExperienceLevel), rec.ExtractionError,
		rec.Source, rec.RequirementsHTML, rec.ScrapedAt,
	)
	if err != nil {
		return false, errors.Wrapf(err, "failed to save job %s", rec.Link)
	}
	return tag.RowsAffected() == 1, nil
}

// searchClause is a literal, case-insensitive substring match; $1 is never
// read as a LIKE pattern.
const searchClause = `($1 = '' OR strpos(lower(title), lower($1)) > 0
	OR strpos(lower(company), lower($1)) > 0
	OR strpos(lower(array_to_string(technologies, ' ')), lower($1)) > 0)`

// ListJobs returns one page of records, newest first, matching search on
// title, company or technologies, plus the total number of matches.
func (r *Repository) ListJobs(ctx context.Context, offset, limit int, search string) ([]models.JobRecord, int, error) {
	search = strings.TrimSpace(search)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM jobs WHERE `+searchClause, search).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "failed to count jobs")
	}

	rows, err := r.db.Query(ctx, `
		SELECT link, title, company, description, technologies, visa_sponsorship, salary, location,
			remote, experience_level, extraction_error, source, requirements_html, scraped_at
		FROM jobs WHERE `+searchClause+`
		ORDER BY scraped_at DESC, file_index DESC
		OFFSET $2 LIMIT $3`, search, offset, limit)
	if err != nil {
		return nil, 0, errors.Wrap(err, "failed to list jobs")
	}
	defer rows.Close()

	jobs := make([]models.JobRecord, 0, limit)
	for rows.Next() {
		var (
			rec                    models.JobRecord
			visa, remote, expLevel string
		)
		if err := rows.Scan(&rec.Link, &rec.Title, &rec.Company, &rec.Description, &rec.Technologies,
			&visa, &rec.Salary, &rec.Location, &remote, &expLevel, &rec.ExtractionError,
			&rec.Source, &rec.RequirementsHTML, &rec.ScrapedAt); err != nil {
			return nil, 0, errors.Wrap(err, "failed to scan job")
		}
		rec.VisaSponsorship = models.VisaSponsorship(visa)
		rec.Remote = models.RemotePolicy(remote)
		rec.ExperienceLevel = models.ExperienceLevel(expLevel)
		jobs = append(jobs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "failed to list jobs")
	}
	return jobs, total, nil
}
