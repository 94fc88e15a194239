package personas

import "context"

// Repo defines persistence operations for personas.
type Repo interface {
	Create(ctx context.Context, persona Persona) error
	GetByID(ctx context.Context, userID, personaID string) (Persona, error)
	ListByUser(ctx context.Context, userID string) ([]Persona, error)
	Update(ctx context.Context, persona Persona) error
	Delete(ctx context.Context, userID, personaID string) error
}
