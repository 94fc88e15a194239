package personas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/resumes"
)

// Service contains business logic for personas.
type Service struct {
	Repo    Repo
	Resumes resumes.Repo
}

// CreateInput carries user-supplied persona fields.
type CreateInput struct {
	Name     string
	Headline string
	ResumeID *string
}

// Create validates and persists a new persona. A referenced resume must
// exist and belong to the same user.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Persona, error) {
	if in.Name == "" {
		return Persona{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.checkResume(ctx, userID, in.ResumeID); err != nil {
		return Persona{}, err
	}

	now := time.Now().UTC()
	persona := Persona{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		Headline:  in.Headline,
		ResumeID:  in.ResumeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, persona); err != nil {
		return Persona{}, err
	}
	return persona, nil
}

// Get fetches a persona owned by the user.
func (s *Service) Get(ctx context.Context, userID, personaID string) (Persona, error) {
	return s.Repo.GetByID(ctx, userID, personaID)
}

// List returns all personas for the user.
func (s *Service) List(ctx context.Context, userID string) ([]Persona, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update rewrites a persona's mutable fields.
func (s *Service) Update(ctx context.Context, userID, personaID string, in CreateInput) (Persona, error) {
	if in.Name == "" {
		return Persona{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	existing, err := s.Repo.GetByID(ctx, userID, personaID)
	if err != nil {
		return Persona{}, err
	}
	if err := s.checkResume(ctx, userID, in.ResumeID); err != nil {
		return Persona{}, err
	}

	existing.Name = in.Name
	existing.Headline = in.Headline
	existing.ResumeID = in.ResumeID
	existing.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, existing); err != nil {
		return Persona{}, err
	}
	return existing, nil
}

// Delete removes a persona owned by the user.
func (s *Service) Delete(ctx context.Context, userID, personaID string) error {
	return s.Repo.Delete(ctx, userID, personaID)
}

func (s *Service) checkResume(ctx context.Context, userID string, resumeID *string) error {
	if resumeID == nil || *resumeID == "" || s.Resumes == nil {
		return nil
	}
	if _, err := s.Resumes.GetByID(ctx, userID, *resumeID); err != nil {
		return fmt.Errorf("%w: resume %s not found", ErrInvalidInput, *resumeID)
	}
	return nil
}
