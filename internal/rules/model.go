package rules

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("rule not found")
	ErrInvalidInput = errors.New("invalid rule")
)

// AutoApplyRule is a user-owned configuration governing when auto-apply may
// act. Every nullable field, when nil or empty, imposes no constraint.
type AutoApplyRule struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"userId"`
	Name                   string    `json:"name"`
	PersonaID              *string   `json:"personaId"`
	MatchScoreThreshold    *int      `json:"matchScoreThreshold"`
	MaxApplicationsPerWeek *int      `json:"maxApplicationsPerWeek"`
	ExcludeCompanies       []string  `json:"excludeCompanies"`
	IncludeOnlyCompanies   []string  `json:"includeOnlyCompanies"`
	RequireAllKeywords     []string  `json:"requireAllKeywords"`
	ActiveDays             []string  `json:"activeDays"`
	Enabled                bool      `json:"enabled"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

var weekdayCodes = map[string]bool{
	"sun": true, "mon": true, "tue": true, "wed": true,
	"thu": true, "fri": true, "sat": true,
}

// Validate checks field ranges. It does not enforce presence of any optional
// filter: an entirely unconstrained rule is valid.
func (r AutoApplyRule) Validate() error {
	if r.Name == "" {
		return errors.New("rule name is required")
	}
	if r.MatchScoreThreshold != nil {
		if *r.MatchScoreThreshold < 0 || *r.MatchScoreThreshold > 100 {
			return errors.New("match_score_threshold must be between 0 and 100")
		}
	}
	if r.MaxApplicationsPerWeek != nil && *r.MaxApplicationsPerWeek < 0 {
		return errors.New("max_applications_per_week must not be negative")
	}
	for _, day := range r.ActiveDays {
		if !weekdayCodes[day] {
			return errors.New("active_days entries must be one of sun..sat")
		}
	}
	return nil
}
