package personas

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	personas map[string]Persona
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{personas: make(map[string]Persona)}
}

func (r *MemoryRepo) Create(ctx context.Context, persona Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.personas[persona.ID] = persona
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, personaID string) (Persona, error) {
	if err := ctx.Err(); err != nil {
		return Persona{}, err
	}
	r.mu.RLock()
	persona, ok := r.personas[personaID]
	r.mu.RUnlock()
	if !ok || persona.UserID != userID {
		return Persona{}, ErrNotFound
	}
	return persona, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Persona
	for _, persona := range r.personas {
		if persona.UserID == userID {
			out = append(out, persona)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, persona Persona) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.personas[persona.ID]
	if !ok || existing.UserID != persona.UserID {
		return ErrNotFound
	}
	persona.CreatedAt = existing.CreatedAt
	r.personas[persona.ID] = persona
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, personaID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	persona, ok := r.personas[personaID]
	if !ok || persona.UserID != userID {
		return ErrNotFound
	}
	delete(r.personas, personaID)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
