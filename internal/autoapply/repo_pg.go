package autoapply

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"autoapply-backend/internal/autoapply/eligibility"
)

// PGQueueRepo implements QueueRepo using Postgres.
type PGQueueRepo struct {
	DB *sql.DB
}

// Create inserts a new queue entry. Reasons and computed diagnostics are
// stored as JSONB alongside the row.
func (r *PGQueueRepo) Create(ctx context.Context, entry QueueEntry) error {
	const query = `
INSERT INTO auto_apply_queue (
    id,
    user_id,
    rule_id,
    persona_id,
    job_id,
    status,
    match_score,
    severity,
    reasons,
    computed,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	reasons, err := json.Marshal(entry.Reasons)
	if err != nil {
		return err
	}
	computed, err := json.Marshal(entry.Computed)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.RuleID,
		entry.PersonaID,
		entry.JobID,
		string(entry.Status),
		entry.MatchScore,
		string(entry.Severity),
		reasons,
		computed,
		entry.CreatedAt,
		entry.UpdatedAt,
	)
	return err
}

const queueColumns = `id, user_id, rule_id, persona_id, job_id, status, match_score, severity, reasons, computed, created_at, updated_at`

// GetByID fetches a queue entry owned by the user.
func (r *PGQueueRepo) GetByID(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	const query = `
SELECT ` + queueColumns + `
FROM auto_apply_queue
WHERE user_id = $1 AND id = $2
LIMIT 1`
	row := r.DB.QueryRowContext(ctx, query, userID, entryID)
	entry, err := scanQueueEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return QueueEntry{}, ErrNotFound
		}
		return QueueEntry{}, err
	}
	return entry, nil
}

// ListByUser lists queue entries ordered newest-first.
func (r *PGQueueRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]QueueEntry, error) {
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
SELECT ` + queueColumns + `
FROM auto_apply_queue
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []QueueEntry
	for rows.Next() {
		entry, err := scanQueueEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// UpdateStatus moves an entry between statuses, guarding the expected
// current status in the WHERE clause so concurrent updates cannot race.
func (r *PGQueueRepo) UpdateStatus(ctx context.Context, userID, entryID string, from, to Status) error {
	const query = `
UPDATE auto_apply_queue
SET status = $1, updated_at = $2
WHERE user_id = $3 AND id = $4 AND status = $5`
	res, err := r.DB.ExecContext(ctx, query, string(to), time.Now().UTC(), userID, entryID, string(from))
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsForJob reports whether a non-cancelled entry already covers the triple.
func (r *PGQueueRepo) ExistsForJob(ctx context.Context, userID, jobID, ruleID string) (bool, error) {
	const query = `
SELECT EXISTS (
    SELECT 1 FROM auto_apply_queue
    WHERE user_id = $1 AND job_id = $2 AND rule_id = $3 AND status <> 'cancelled'
)`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, userID, jobID, ruleID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueEntry(row rowScanner) (QueueEntry, error) {
	var entry QueueEntry
	var status string
	var severity string
	var reasonsRaw []byte
	var computedRaw []byte
	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.RuleID,
		&entry.PersonaID,
		&entry.JobID,
		&status,
		&entry.MatchScore,
		&severity,
		&reasonsRaw,
		&computedRaw,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return QueueEntry{}, err
	}
	entry.Status = Status(status)
	entry.Severity = eligibility.Severity(severity)
	if len(reasonsRaw) > 0 {
		if err := json.Unmarshal(reasonsRaw, &entry.Reasons); err != nil {
			return QueueEntry{}, err
		}
	}
	if len(computedRaw) > 0 {
		if err := json.Unmarshal(computedRaw, &entry.Computed); err != nil {
			return QueueEntry{}, err
		}
	}
	return entry, nil
}

// PGLogRepo implements LogRepo using Postgres.
type PGLogRepo struct {
	DB *sql.DB
}

// Append inserts an action log entry.
func (r *PGLogRepo) Append(ctx context.Context, entry ActionLog) error {
	const query = `
INSERT INTO auto_apply_log (id, user_id, rule_id, job_id, action, status, error_message, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	var errMsg sql.NullString
	if entry.ErrorMessage != "" {
		errMsg = sql.NullString{String: entry.ErrorMessage, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.RuleID,
		entry.JobID,
		entry.Action,
		entry.Status,
		errMsg,
		entry.CreatedAt,
	)
	return err
}

// ListByUser lists action log entries newest-first.
func (r *PGLogRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ActionLog, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, rule_id, job_id, action, status, error_message, created_at
FROM auto_apply_log
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ActionLog
	for rows.Next() {
		var entry ActionLog
		var errMsg sql.NullString
		if err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.RuleID,
			&entry.JobID,
			&entry.Action,
			&entry.Status,
			&errMsg,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			entry.ErrorMessage = errMsg.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// CountQueuedSince counts queued actions at or after the given instant.
func (r *PGLogRepo) CountQueuedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM auto_apply_log
WHERE user_id = $1 AND status = 'queued' AND created_at >= $2`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

var _ QueueRepo = (*PGQueueRepo)(nil)
var _ LogRepo = (*PGLogRepo)(nil)
