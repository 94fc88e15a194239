package autoapply

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service exposes queue operations to the HTTP layer and the submitter.
type Service struct {
	Queue   QueueRepo
	Log     LogRepo
	Builder *Builder
}

// ListQueue returns the user's queue entries newest-first.
func (s *Service) ListQueue(ctx context.Context, userID string, limit, offset int) ([]QueueEntry, error) {
	return s.Queue.ListByUser(ctx, userID, limit, offset)
}

// GetEntry fetches one queue entry owned by the user.
func (s *Service) GetEntry(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	return s.Queue.GetByID(ctx, userID, entryID)
}

// Run triggers one builder pass for the user.
func (s *Service) Run(ctx context.Context, userID string) (RunStats, error) {
	return s.Builder.Run(ctx, userID)
}

// MarkSubmitted moves a pending entry to submitted and records the action.
func (s *Service) MarkSubmitted(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	return s.transition(ctx, userID, entryID, StatusSubmitted, LogStatusSubmitted, "")
}

// MarkFailed moves a pending entry to failed with the given reason.
func (s *Service) MarkFailed(ctx context.Context, userID, entryID, reason string) (QueueEntry, error) {
	return s.transition(ctx, userID, entryID, StatusFailed, LogStatusFailed, reason)
}

// Cancel moves a pending or failed entry to cancelled.
func (s *Service) Cancel(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	entry, err := s.Queue.GetByID(ctx, userID, entryID)
	if err != nil {
		return QueueEntry{}, err
	}
	if !IsTransitionAllowed(entry.Status, StatusCancelled) {
		return QueueEntry{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, StatusCancelled)
	}
	if err := s.Queue.UpdateStatus(ctx, userID, entryID, entry.Status, StatusCancelled); err != nil {
		return QueueEntry{}, err
	}
	entry.Status = StatusCancelled
	entry.UpdatedAt = time.Now().UTC()
	return entry, nil
}

// Retry moves a failed entry back to pending.
func (s *Service) Retry(ctx context.Context, userID, entryID string) (QueueEntry, error) {
	entry, err := s.Queue.GetByID(ctx, userID, entryID)
	if err != nil {
		return QueueEntry{}, err
	}
	if !IsTransitionAllowed(entry.Status, StatusPending) {
		return QueueEntry{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, StatusPending)
	}
	if err := s.Queue.UpdateStatus(ctx, userID, entryID, entry.Status, StatusPending); err != nil {
		return QueueEntry{}, err
	}
	entry.Status = StatusPending
	entry.UpdatedAt = time.Now().UTC()
	return entry, nil
}

// ListLog returns the user's action log newest-first.
func (s *Service) ListLog(ctx context.Context, userID string, limit, offset int) ([]ActionLog, error) {
	return s.Log.ListByUser(ctx, userID, limit, offset)
}

func (s *Service) transition(ctx context.Context, userID, entryID string, to Status, logStatus, errMsg string) (QueueEntry, error) {
	entry, err := s.Queue.GetByID(ctx, userID, entryID)
	if err != nil {
		return QueueEntry{}, err
	}
	if !IsTransitionAllowed(entry.Status, to) {
		return QueueEntry{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, entry.Status, to)
	}
	if err := s.Queue.UpdateStatus(ctx, userID, entryID, entry.Status, to); err != nil {
		return QueueEntry{}, err
	}

	now := time.Now().UTC()
	if err := s.Log.Append(ctx, ActionLog{
		ID:           uuid.NewString(),
		UserID:       userID,
		RuleID:       entry.RuleID,
		JobID:        entry.JobID,
		Action:       "auto_apply",
		Status:       logStatus,
		ErrorMessage: errMsg,
		CreatedAt:    now,
	}); err != nil {
		return QueueEntry{}, err
	}

	entry.Status = to
	entry.UpdatedAt = now
	return entry, nil
}
