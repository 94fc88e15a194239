package jobs

import (
	"context"
	"database/sql"
	"errors"
)

// PGJobRepo implements JobRepo using Postgres.
type PGJobRepo struct {
	DB *sql.DB
}

const jobColumns = `id, external_url, company, title, description, location, source, ats_vendor, posted_at, created_at`

func (r *PGJobRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (` + jobColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	var vendor sql.NullString
	if job.ATSVendor != "" {
		vendor = sql.NullString{String: job.ATSVendor, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		job.ID,
		job.ExternalURL,
		job.Company,
		job.Title,
		job.Description,
		job.Location,
		job.Source,
		vendor,
		job.PostedAt,
		job.CreatedAt,
	)
	return err
}

func (r *PGJobRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT ` + jobColumns + `
FROM jobs
WHERE id = $1
LIMIT 1`
	job, err := scanJob(r.DB.QueryRowContext(ctx, query, jobID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	return job, nil
}

func (r *PGJobRepo) ListRecent(ctx context.Context, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + jobColumns + `
FROM jobs
ORDER BY posted_at DESC
LIMIT $1 OFFSET $2`
	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var job Job
	var vendor sql.NullString
	err := row.Scan(
		&job.ID,
		&job.ExternalURL,
		&job.Company,
		&job.Title,
		&job.Description,
		&job.Location,
		&job.Source,
		&vendor,
		&job.PostedAt,
		&job.CreatedAt,
	)
	if err != nil {
		return Job{}, err
	}
	if vendor.Valid {
		job.ATSVendor = vendor.String
	}
	return job, nil
}

// PGMatchRepo implements MatchRepo using Postgres.
type PGMatchRepo struct {
	DB *sql.DB
}

const matchColumns = `id, user_id, persona_id, job_id, match_score, created_at`

func (r *PGMatchRepo) Upsert(ctx context.Context, match Match) error {
	const query = `
INSERT INTO matches (` + matchColumns + `)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (persona_id, job_id)
DO UPDATE SET match_score = EXCLUDED.match_score`
	_, err := r.DB.ExecContext(ctx, query,
		match.ID,
		match.UserID,
		match.PersonaID,
		match.JobID,
		match.MatchScore,
		match.CreatedAt,
	)
	return err
}

func (r *PGMatchRepo) ListTopForPersona(ctx context.Context, userID, personaID string, limit int) ([]Match, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	const query = `
SELECT ` + matchColumns + `
FROM matches
WHERE user_id = $1 AND persona_id = $2
ORDER BY match_score DESC, created_at DESC
LIMIT $3`
	return r.list(ctx, query, userID, personaID, limit)
}

func (r *PGMatchRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Match, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + matchColumns + `
FROM matches
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	return r.list(ctx, query, userID, limit, offset)
}

func (r *PGMatchRepo) list(ctx context.Context, query string, args ...any) ([]Match, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var match Match
		if err := rows.Scan(
			&match.ID,
			&match.UserID,
			&match.PersonaID,
			&match.JobID,
			&match.MatchScore,
			&match.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, match)
	}
	return out, rows.Err()
}

var _ JobRepo = (*PGJobRepo)(nil)
var _ MatchRepo = (*PGMatchRepo)(nil)
