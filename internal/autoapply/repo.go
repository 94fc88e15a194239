package autoapply

import (
	"context"
	"time"
)

// QueueRepo defines persistence operations for the auto-apply queue.
type QueueRepo interface {
	Create(ctx context.Context, entry QueueEntry) error
	GetByID(ctx context.Context, userID, entryID string) (QueueEntry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]QueueEntry, error)
	// UpdateStatus moves an entry from one status to another. It returns
	// ErrNotFound when no row matches the (user, entry, from) triple.
	UpdateStatus(ctx context.Context, userID, entryID string, from, to Status) error
	// ExistsForJob reports whether any non-cancelled entry already covers
	// the (user, job, rule) triple. The builder uses it as its idempotency
	// check before evaluating a candidate.
	ExistsForJob(ctx context.Context, userID, jobID, ruleID string) (bool, error)
}

// LogRepo defines persistence operations for the auto-apply action log.
type LogRepo interface {
	Append(ctx context.Context, entry ActionLog) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]ActionLog, error)
	// CountQueuedSince counts queued actions for a user at or after the
	// given instant; the builder calls it once per rule-processing pass to
	// fill UserContext.
	CountQueuedSince(ctx context.Context, userID string, since time.Time) (int, error)
}
