package jobs

import (
	"context"
	"sort"
	"sync"
)

// MemoryJobRepo is an in-memory JobRepo for dev mode and tests.
type MemoryJobRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryJobRepo constructs an empty in-memory job repo.
func NewMemoryJobRepo() *MemoryJobRepo {
	return &MemoryJobRepo{jobs: make(map[string]Job)}
}

func (r *MemoryJobRepo) Create(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[job.ID] = job
	return nil
}

func (r *MemoryJobRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	job, ok := r.jobs[jobID]
	r.mu.RUnlock()
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

func (r *MemoryJobRepo) ListRecent(ctx context.Context, limit, offset int) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	var all []Job
	for _, job := range r.jobs {
		all = append(all, job)
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		return all[i].PostedAt.After(all[j].PostedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// MemoryMatchRepo is an in-memory MatchRepo for dev mode and tests.
type MemoryMatchRepo struct {
	mu      sync.RWMutex
	matches map[string]Match // keyed by personaID+"/"+jobID
}

// NewMemoryMatchRepo constructs an empty in-memory match repo.
func NewMemoryMatchRepo() *MemoryMatchRepo {
	return &MemoryMatchRepo{matches: make(map[string]Match)}
}

func (r *MemoryMatchRepo) Upsert(ctx context.Context, match Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches[match.PersonaID+"/"+match.JobID] = match
	return nil
}

func (r *MemoryMatchRepo) ListTopForPersona(ctx context.Context, userID, personaID string, limit int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	r.mu.RLock()
	var all []Match
	for _, match := range r.matches {
		if match.UserID == userID && match.PersonaID == personaID {
			all = append(all, match)
		}
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		if all[i].MatchScore != all[j].MatchScore {
			return all[i].MatchScore > all[j].MatchScore
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *MemoryMatchRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	var all []Match
	for _, match := range r.matches {
		if match.UserID == userID {
			all = append(all, match)
		}
	}
	r.mu.RUnlock()
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

var _ JobRepo = (*MemoryJobRepo)(nil)
var _ MatchRepo = (*MemoryMatchRepo)(nil)
