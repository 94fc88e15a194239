package rules

import "context"

// Repo defines persistence operations for auto-apply rules.
type Repo interface {
	Create(ctx context.Context, rule AutoApplyRule) error
	GetByID(ctx context.Context, userID, ruleID string) (AutoApplyRule, error)
	ListByUser(ctx context.Context, userID string) ([]AutoApplyRule, error)
	// ListEnabledByUser returns only enabled rules; the queue builder never
	// sees disabled ones.
	ListEnabledByUser(ctx context.Context, userID string) ([]AutoApplyRule, error)
	Update(ctx context.Context, rule AutoApplyRule) error
	Delete(ctx context.Context, userID, ruleID string) error
	// ListUsersWithEnabledRules returns the distinct user ids that have at
	// least one enabled rule, for scheduled builder runs.
	ListUsersWithEnabledRules(ctx context.Context) ([]string, error)
}
