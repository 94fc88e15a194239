package autoapply

import (
	"context"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/queue"
)

// QueuePublisher forwards accepted queue entries to the submission queue.
type QueuePublisher struct {
	Client queue.Client
}

func (p *QueuePublisher) PublishSubmission(ctx context.Context, entry QueueEntry) error {
	return p.Client.Send(ctx, queue.Message{
		QueueEntryID: entry.ID,
		UserID:       entry.UserID,
		JobID:        entry.JobID,
		RequestID:    uuid.NewString(),
		EnqueuedAt:   time.Now().UTC().Format(time.RFC3339),
		Version:      1,
	})
}

var _ Publisher = (*QueuePublisher)(nil)
