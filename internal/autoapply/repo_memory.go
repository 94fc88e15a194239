package autoapply

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryQueueRepo is an in-memory QueueRepo for dev mode and tests.
type MemoryQueueRepo struct {
	mu      sync.RWMutex
	entries map[string]QueueEntry
}

// NewMemoryQueueRepo constructs an empty in-memory queue repo.
func NewMemoryQueueRepo() *MemoryQueueRepo {
	return &MemoryQueueRepo{entries: make(map[string]QueueEntry)}
}

func (r *MemoryQueueRepo) Create(ctx context.Context, entry QueueEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.ID] = entry
	return nil
}

func (r *MemoryQueueRepo) GetByID(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	if err := ctx.Err(); err != nil {
		return QueueEntry{}, err
	}
	r.mu.RLock()
	entry, ok := r.entries[entryID]
	r.mu.RUnlock()
	if !ok || entry.UserID != userID {
		return QueueEntry{}, ErrNotFound
	}
	return entry, nil
}

func (r *MemoryQueueRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]QueueEntry, error) {
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
	var all []QueueEntry
	for _, entry := range r.entries {
		if entry.UserID == userID {
			all = append(all, entry)
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

func (r *MemoryQueueRepo) UpdateStatus(ctx context.Context, userID, entryID string, from, to Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[entryID]
	if !ok || entry.UserID != userID || entry.Status != from {
		return ErrNotFound
	}
	entry.Status = to
	entry.UpdatedAt = time.Now().UTC()
	r.entries[entryID] = entry
	return nil
}

func (r *MemoryQueueRepo) ExistsForJob(ctx context.Context, userID, jobID, ruleID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.JobID == jobID && entry.RuleID == ruleID && entry.Status != StatusCancelled {
			return true, nil
		}
	}
	return false, nil
}

// MemoryLogRepo is an in-memory LogRepo for dev mode and tests.
type MemoryLogRepo struct {
	mu      sync.RWMutex
	entries []ActionLog
}

// NewMemoryLogRepo constructs an empty in-memory log repo.
func NewMemoryLogRepo() *MemoryLogRepo {
	return &MemoryLogRepo{}
}

func (r *MemoryLogRepo) Append(ctx context.Context, entry ActionLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *MemoryLogRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ActionLog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	r.mu.RLock()
	var all []ActionLog
	for _, entry := range r.entries {
		if entry.UserID == userID {
			all = append(all, entry)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(all, func(i, j int) bool {
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

func (r *MemoryLogRepo) CountQueuedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, entry := range r.entries {
		if entry.UserID == userID && entry.Status == LogStatusQueued && !entry.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

var _ QueueRepo = (*MemoryQueueRepo)(nil)
var _ LogRepo = (*MemoryLogRepo)(nil)
