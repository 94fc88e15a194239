package rules

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory Repo for dev mode and tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	rules map[string]AutoApplyRule
}

// NewMemoryRepo constructs an empty in-memory repo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{rules: make(map[string]AutoApplyRule)}
}

func (r *MemoryRepo) Create(ctx context.Context, rule AutoApplyRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.ID] = rule
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, userID, ruleID string) (AutoApplyRule, error) {
	if err := ctx.Err(); err != nil {
		return AutoApplyRule{}, err
	}
	r.mu.RLock()
	rule, ok := r.rules[ruleID]
	r.mu.RUnlock()
	if !ok || rule.UserID != userID {
		return AutoApplyRule{}, ErrNotFound
	}
	return rule, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]AutoApplyRule, error) {
	return r.filter(ctx, userID, false)
}

func (r *MemoryRepo) ListEnabledByUser(ctx context.Context, userID string) ([]AutoApplyRule, error) {
	return r.filter(ctx, userID, true)
}

func (r *MemoryRepo) filter(ctx context.Context, userID string, enabledOnly bool) ([]AutoApplyRule, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []AutoApplyRule
	for _, rule := range r.rules {
		if rule.UserID != userID {
			continue
		}
		if enabledOnly && !rule.Enabled {
			continue
		}
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Update(ctx context.Context, rule AutoApplyRule) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.rules[rule.ID]
	if !ok || existing.UserID != rule.UserID {
		return ErrNotFound
	}
	rule.CreatedAt = existing.CreatedAt
	r.rules[rule.ID] = rule
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID, ruleID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[ruleID]
	if !ok || rule.UserID != userID {
		return ErrNotFound
	}
	delete(r.rules, ruleID)
	return nil
}

func (r *MemoryRepo) ListUsersWithEnabledRules(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, rule := range r.rules {
		if rule.Enabled && !seen[rule.UserID] {
			seen[rule.UserID] = true
			out = append(out, rule.UserID)
		}
	}
	sort.Strings(out)
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
