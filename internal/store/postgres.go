package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aswath-space/jobseekers-shovel/internal/model"
)

// Postgres is a Store backed by a pgx connection pool. Observations are kept
// as a JSONB column alongside the scalar fields.
//
// Expected table:
//
//	CREATE TABLE tracked_jobs (
//	  id                       TEXT PRIMARY KEY,
//	  company_id               TEXT NOT NULL,
//	  company_name             TEXT NOT NULL,
//	  title                    TEXT NOT NULL,
//	  location                 TEXT NOT NULL,
//	  url                      TEXT NOT NULL,
//	  signature                TEXT NOT NULL,
//	  classification           TEXT NOT NULL,
//	  classification_reasoning TEXT NOT NULL,
//	  status                   TEXT NOT NULL,
//	  first_seen               TIMESTAMPTZ NOT NULL,
//	  last_seen                TIMESTAMPTZ NOT NULL,
//	  observations             JSONB NOT NULL DEFAULT '[]',
//	  source_identifier        TEXT NOT NULL DEFAULT '',
//	  department               TEXT NOT NULL DEFAULT '',
//	  description              TEXT NOT NULL DEFAULT '',
//	  created_at               TIMESTAMPTZ,
//	  updated_at               TIMESTAMPTZ
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a Store backed by the given pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const jobColumns = `id, company_id, company_name, title, location, url, signature,
	classification, classification_reasoning, status, first_seen, last_seen,
	observations, source_identifier, department, description, created_at, updated_at`

func (p *Postgres) Get(ctx context.Context, id string) (*model.TrackedJob, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM tracked_jobs WHERE id = $1`, id)
	return scanJob(row)
}

func (p *Postgres) Put(ctx context.Context, job *model.TrackedJob) error {
	obs, err := json.Marshal(job.Observations)
	if err != nil {
		return fmt.Errorf("marshal observations: %w", err)
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO tracked_jobs (`+jobColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
		 ON CONFLICT (id) DO UPDATE SET
		   company_id = EXCLUDED.company_id,
		   company_name = EXCLUDED.company_name,
		   title = EXCLUDED.title,
		   location = EXCLUDED.location,
		   url = EXCLUDED.url,
		   signature = EXCLUDED.signature,
		   classification = EXCLUDED.classification,
		   classification_reasoning = EXCLUDED.classification_reasoning,
		   status = EXCLUDED.status,
		   first_seen = EXCLUDED.first_seen,
		   last_seen = EXCLUDED.last_seen,
		   observations = EXCLUDED.observations,
		   source_identifier = EXCLUDED.source_identifier,
		   department = EXCLUDED.department,
		   description = EXCLUDED.description,
		   created_at = EXCLUDED.created_at,
		   updated_at = EXCLUDED.updated_at`,
		job.ID, job.CompanyID, job.CompanyName, job.Title, job.Location, job.URL,
		job.Signature, string(job.Classification), job.ClassificationReasoning,
		string(job.Status), job.FirstSeen, job.LastSeen, obs,
		job.SourceIdentifier, job.Department, job.Description,
		job.CreatedAt, job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert tracked job %s: %w", job.ID, err)
	}
	return nil
}

func (p *Postgres) All(ctx context.Context) ([]*model.TrackedJob, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM tracked_jobs ORDER BY first_seen, id`)
	if err != nil {
		return nil, fmt.Errorf("query tracked jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (p *Postgres) FindBySourceID(ctx context.Context, companyID, sourceID string) (*model.TrackedJob, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM tracked_jobs
		 WHERE company_id = $1 AND source_identifier = $2
		 ORDER BY first_seen, id
		 LIMIT 1`,
		companyID, sourceID)
	return scanJob(row)
}

func (p *Postgres) QueryByCompanyAndStatus(ctx context.Context, companyID string, statuses ...model.Status) ([]*model.TrackedJob, error) {
	wanted := make([]string, len(statuses))
	for i, s := range statuses {
		wanted[i] = string(s)
	}

	rows, err := p.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM tracked_jobs
		 WHERE company_id = $1 AND status = ANY($2)
		 ORDER BY first_seen, id`,
		companyID, wanted)
	if err != nil {
		return nil, fmt.Errorf("query tracked jobs for %s: %w", companyID, err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.TrackedJob, error) {
	var (
		j              model.TrackedJob
		classification string
		status         string
		obs            []byte
	)
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.CompanyName, &j.Title, &j.Location, &j.URL,
		&j.Signature, &classification, &j.ClassificationReasoning, &status,
		&j.FirstSeen, &j.LastSeen, &obs,
		&j.SourceIdentifier, &j.Department, &j.Description,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan tracked job: %w", err)
	}

	if j.Classification, err = model.ParseClassification(classification); err != nil {
		return nil, err
	}
	if j.Status, err = model.ParseStatus(status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(obs, &j.Observations); err != nil {
		return nil, fmt.Errorf("unmarshal observations for %s: %w", j.ID, err)
	}
	return &j, nil
}

func scanJobs(rows pgx.Rows) ([]*model.TrackedJob, error) {
	jobs := make([]*model.TrackedJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
