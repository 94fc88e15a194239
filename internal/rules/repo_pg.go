package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres. The optional string-set filters are
// stored as JSONB arrays so their order survives round-trips.
type PGRepo struct {
	DB *sql.DB
}

const ruleColumns = `id, user_id, name, persona_id, match_score_threshold, max_applications_per_week, exclude_companies, include_only_companies, require_all_keywords, active_days, enabled, created_at, updated_at`

// Create inserts a new rule.
func (r *PGRepo) Create(ctx context.Context, rule AutoApplyRule) error {
	const query = `
INSERT INTO auto_apply_rules (` + ruleColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	args, err := ruleArgs(rule)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, args...)
	return err
}

// GetByID fetches a rule owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userID, ruleID string) (AutoApplyRule, error) {
	const query = `
SELECT ` + ruleColumns + `
FROM auto_apply_rules
WHERE user_id = $1 AND id = $2
LIMIT 1`
	rule, err := scanRule(r.DB.QueryRowContext(ctx, query, userID, ruleID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AutoApplyRule{}, ErrNotFound
		}
		return AutoApplyRule{}, err
	}
	return rule, nil
}

// ListByUser lists all rules for a user, newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]AutoApplyRule, error) {
	const query = `
SELECT ` + ruleColumns + `
FROM auto_apply_rules
WHERE user_id = $1
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListEnabledByUser lists only enabled rules for a user.
func (r *PGRepo) ListEnabledByUser(ctx context.Context, userID string) ([]AutoApplyRule, error) {
	const query = `
SELECT ` + ruleColumns + `
FROM auto_apply_rules
WHERE user_id = $1 AND enabled = TRUE
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *PGRepo) list(ctx context.Context, query string, userID string) ([]AutoApplyRule, error) {
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AutoApplyRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

// Update rewrites all mutable fields of a rule.
func (r *PGRepo) Update(ctx context.Context, rule AutoApplyRule) error {
	const query = `
UPDATE auto_apply_rules
SET name = $3,
    persona_id = $4,
    match_score_threshold = $5,
    max_applications_per_week = $6,
    exclude_companies = $7,
    include_only_companies = $8,
    require_all_keywords = $9,
    active_days = $10,
    enabled = $11,
    updated_at = $12
WHERE id = $1 AND user_id = $2`

	exclude, include, keywords, days, err := marshalFilters(rule)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		rule.ID,
		rule.UserID,
		rule.Name,
		nullableStringPtr(rule.PersonaID),
		nullableIntPtr(rule.MatchScoreThreshold),
		nullableIntPtr(rule.MaxApplicationsPerWeek),
		exclude,
		include,
		keywords,
		days,
		rule.Enabled,
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a rule owned by the user.
func (r *PGRepo) Delete(ctx context.Context, userID, ruleID string) error {
	const query = `DELETE FROM auto_apply_rules WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, ruleID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUsersWithEnabledRules returns distinct user ids with enabled rules.
func (r *PGRepo) ListUsersWithEnabledRules(ctx context.Context) ([]string, error) {
	const query = `
SELECT DISTINCT user_id
FROM auto_apply_rules
WHERE enabled = TRUE
ORDER BY user_id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func ruleArgs(rule AutoApplyRule) ([]any, error) {
	exclude, include, keywords, days, err := marshalFilters(rule)
	if err != nil {
		return nil, err
	}
	return []any{
		rule.ID,
		rule.UserID,
		rule.Name,
		nullableStringPtr(rule.PersonaID),
		nullableIntPtr(rule.MatchScoreThreshold),
		nullableIntPtr(rule.MaxApplicationsPerWeek),
		exclude,
		include,
		keywords,
		days,
		rule.Enabled,
		rule.CreatedAt,
		rule.UpdatedAt,
	}, nil
}

func marshalFilters(rule AutoApplyRule) (exclude, include, keywords, days any, err error) {
	if exclude, err = marshalStringSet(rule.ExcludeCompanies); err != nil {
		return
	}
	if include, err = marshalStringSet(rule.IncludeOnlyCompanies); err != nil {
		return
	}
	if keywords, err = marshalStringSet(rule.RequireAllKeywords); err != nil {
		return
	}
	days, err = marshalStringSet(rule.ActiveDays)
	return
}

func marshalStringSet(values []string) (any, error) {
	if values == nil {
		return nil, nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (AutoApplyRule, error) {
	var rule AutoApplyRule
	var personaID sql.NullString
	var threshold sql.NullInt64
	var weeklyCap sql.NullInt64
	var exclude, include, keywords, days []byte
	err := row.Scan(
		&rule.ID,
		&rule.UserID,
		&rule.Name,
		&personaID,
		&threshold,
		&weeklyCap,
		&exclude,
		&include,
		&keywords,
		&days,
		&rule.Enabled,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return AutoApplyRule{}, err
	}
	if personaID.Valid {
		rule.PersonaID = &personaID.String
	}
	if threshold.Valid {
		v := int(threshold.Int64)
		rule.MatchScoreThreshold = &v
	}
	if weeklyCap.Valid {
		v := int(weeklyCap.Int64)
		rule.MaxApplicationsPerWeek = &v
	}
	if rule.ExcludeCompanies, err = unmarshalStringSet(exclude); err != nil {
		return AutoApplyRule{}, err
	}
	if rule.IncludeOnlyCompanies, err = unmarshalStringSet(include); err != nil {
		return AutoApplyRule{}, err
	}
	if rule.RequireAllKeywords, err = unmarshalStringSet(keywords); err != nil {
		return AutoApplyRule{}, err
	}
	if rule.ActiveDays, err = unmarshalStringSet(days); err != nil {
		return AutoApplyRule{}, err
	}
	return rule, nil
}

func unmarshalStringSet(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func nullableStringPtr(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

func nullableIntPtr(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
