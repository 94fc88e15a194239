package personas

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const personaColumns = `id, user_id, name, headline, resume_id, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, persona Persona) error {
	const query = `
INSERT INTO personas (` + personaColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query,
		persona.ID,
		persona.UserID,
		persona.Name,
		persona.Headline,
		nullableString(persona.ResumeID),
		persona.CreatedAt,
		persona.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID, personaID string) (Persona, error) {
	const query = `
SELECT ` + personaColumns + `
FROM personas
WHERE user_id = $1 AND id = $2
LIMIT 1`
	persona, err := scanPersona(r.DB.QueryRowContext(ctx, query, userID, personaID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Persona{}, ErrNotFound
		}
		return Persona{}, err
	}
	return persona, nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Persona, error) {
	const query = `
SELECT ` + personaColumns + `
FROM personas
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Persona
	for rows.Next() {
		persona, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, persona)
	}
	return out, rows.Err()
}

func (r *PGRepo) Update(ctx context.Context, persona Persona) error {
	const query = `
UPDATE personas
SET name = $3, headline = $4, resume_id = $5, updated_at = $6
WHERE id = $1 AND user_id = $2`
	res, err := r.DB.ExecContext(ctx, query,
		persona.ID,
		persona.UserID,
		persona.Name,
		persona.Headline,
		nullableString(persona.ResumeID),
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

func (r *PGRepo) Delete(ctx context.Context, userID, personaID string) error {
	const query = `DELETE FROM personas WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userID, personaID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPersona(row rowScanner) (Persona, error) {
	var persona Persona
	var resumeID sql.NullString
	err := row.Scan(
		&persona.ID,
		&persona.UserID,
		&persona.Name,
		&persona.Headline,
		&resumeID,
		&persona.CreatedAt,
		&persona.UpdatedAt,
	)
	if err != nil {
		return Persona{}, err
	}
	if resumeID.Valid {
		persona.ResumeID = &resumeID.String
	}
	return persona, nil
}

func nullableString(value *string) any {
	if value == nil || *value == "" {
		return nil
	}
	return *value
}

var _ Repo = (*PGRepo)(nil)
