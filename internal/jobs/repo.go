package jobs

import "context"

// JobRepo defines persistence operations for jobs.
type JobRepo interface {
	// Create inserts a job. Callers deduplicate by external URL before
	// inserting; see SeenStore.
	Create(ctx context.Context, job Job) error
	GetByID(ctx context.Context, jobID string) (Job, error)
	ListRecent(ctx context.Context, limit, offset int) ([]Job, error)
}

// MatchRepo defines persistence operations for persona-job match scores.
type MatchRepo interface {
	Upsert(ctx context.Context, match Match) error
	// ListTopForPersona returns matches for the persona ordered by score
	// descending, then newest first. The builder consumes these.
	ListTopForPersona(ctx context.Context, userID, personaID string, limit int) ([]Match, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Match, error)
}
