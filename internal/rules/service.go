package rules

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for auto-apply rules.
type Service struct {
	Repo Repo
}

// CreateInput carries user-supplied rule fields.
type CreateInput struct {
	Name                   string
	PersonaID              *string
	MatchScoreThreshold    *int
	MaxApplicationsPerWeek *int
	ExcludeCompanies       []string
	IncludeOnlyCompanies   []string
	RequireAllKeywords     []string
	ActiveDays             []string
	Enabled                bool
}

// Create validates and persists a new rule.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (AutoApplyRule, error) {
	now := time.Now().UTC()
	rule := AutoApplyRule{
		ID:                     uuid.NewString(),
		UserID:                 userID,
		Name:                   in.Name,
		PersonaID:              in.PersonaID,
		MatchScoreThreshold:    in.MatchScoreThreshold,
		MaxApplicationsPerWeek: in.MaxApplicationsPerWeek,
		ExcludeCompanies:       in.ExcludeCompanies,
		IncludeOnlyCompanies:   in.IncludeOnlyCompanies,
		RequireAllKeywords:     in.RequireAllKeywords,
		ActiveDays:             in.ActiveDays,
		Enabled:                in.Enabled,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := rule.Validate(); err != nil {
		return AutoApplyRule{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if err := s.Repo.Create(ctx, rule); err != nil {
		return AutoApplyRule{}, err
	}
	return rule, nil
}

// Get fetches a rule owned by the user.
func (s *Service) Get(ctx context.Context, userID, ruleID string) (AutoApplyRule, error) {
	return s.Repo.GetByID(ctx, userID, ruleID)
}

// List returns all rules for the user.
func (s *Service) List(ctx context.Context, userID string) ([]AutoApplyRule, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// Update validates and rewrites an existing rule.
func (s *Service) Update(ctx context.Context, userID, ruleID string, in CreateInput) (AutoApplyRule, error) {
	existing, err := s.Repo.GetByID(ctx, userID, ruleID)
	if err != nil {
		return AutoApplyRule{}, err
	}
	rule := AutoApplyRule{
		ID:                     existing.ID,
		UserID:                 existing.UserID,
		Name:                   in.Name,
		PersonaID:              in.PersonaID,
		MatchScoreThreshold:    in.MatchScoreThreshold,
		MaxApplicationsPerWeek: in.MaxApplicationsPerWeek,
		ExcludeCompanies:       in.ExcludeCompanies,
		IncludeOnlyCompanies:   in.IncludeOnlyCompanies,
		RequireAllKeywords:     in.RequireAllKeywords,
		ActiveDays:             in.ActiveDays,
		Enabled:                in.Enabled,
		CreatedAt:              existing.CreatedAt,
		UpdatedAt:              time.Now().UTC(),
	}
	if err := rule.Validate(); err != nil {
		return AutoApplyRule{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}
	if err := s.Repo.Update(ctx, rule); err != nil {
		return AutoApplyRule{}, err
	}
	return rule, nil
}

// SetEnabled toggles a rule without touching other fields.
func (s *Service) SetEnabled(ctx context.Context, userID, ruleID string, enabled bool) (AutoApplyRule, error) {
	rule, err := s.Repo.GetByID(ctx, userID, ruleID)
	if err != nil {
		return AutoApplyRule{}, err
	}
	rule.Enabled = enabled
	rule.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, rule); err != nil {
		return AutoApplyRule{}, err
	}
	return rule, nil
}

// Delete removes a rule owned by the user.
func (s *Service) Delete(ctx context.Context, userID, ruleID string) error {
	return s.Repo.Delete(ctx, userID, ruleID)
}
