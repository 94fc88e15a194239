package autoapply

import (
	"context"
	"errors"
	"testing"
	"time"

	"autoapply-backend/internal/autoapply/eligibility"
)

func newServiceFixture(t *testing.T) (*Service, *MemoryQueueRepo, *MemoryLogRepo) {
	t.Helper()
	queueRepo := NewMemoryQueueRepo()
	logRepo := NewMemoryLogRepo()
	svc := &Service{Queue: queueRepo, Log: logRepo}
	return svc, queueRepo, logRepo
}

func seedEntry(t *testing.T, repo *MemoryQueueRepo, status Status) QueueEntry {
	t.Helper()
	entry := QueueEntry{
		ID:         "entry-1",
		UserID:     "user-1",
		RuleID:     "rule-1",
		PersonaID:  "persona-1",
		JobID:      "job-1",
		Status:     status,
		MatchScore: 88,
		Severity:   eligibility.SeverityInfo,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry
}

func TestMarkSubmittedAppendsLog(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusPending)

	entry, err := svc.MarkSubmitted(context.Background(), "user-1", "entry-1")
	if err != nil {
		t.Fatalf("MarkSubmitted: %v", err)
	}
	if entry.Status != StatusSubmitted {
		t.Fatalf("expected status submitted, got %s", entry.Status)
	}

	logs, err := svc.ListLog(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListLog: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(logs))
	}
	if logs[0].Status != LogStatusSubmitted || logs[0].JobID != "job-1" {
		t.Fatalf("unexpected log entry: %+v", logs[0])
	}
}

func TestMarkSubmittedFromCancelledRejected(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusCancelled)

	_, err := svc.MarkSubmitted(context.Background(), "user-1", "entry-1")
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	got, err := queueRepo.GetByID(context.Background(), "user-1", "entry-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("entry status changed to %s", got.Status)
	}
}

func TestMarkFailedRecordsReason(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusPending)

	entry, err := svc.MarkFailed(context.Background(), "user-1", "entry-1", "ats timeout")
	if err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	if entry.Status != StatusFailed {
		t.Fatalf("expected status failed, got %s", entry.Status)
	}

	logs, err := svc.ListLog(context.Background(), "user-1", 10, 0)
	if err != nil {
		t.Fatalf("ListLog: %v", err)
	}
	if len(logs) != 1 || logs[0].ErrorMessage != "ats timeout" {
		t.Fatalf("expected failure reason in log, got %+v", logs)
	}
}

func TestRetryMovesFailedBackToPending(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusFailed)

	entry, err := svc.Retry(context.Background(), "user-1", "entry-1")
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if entry.Status != StatusPending {
		t.Fatalf("expected status pending, got %s", entry.Status)
	}
}

func TestRetryPendingRejected(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusPending)

	if _, err := svc.Retry(context.Background(), "user-1", "entry-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCancelFromFailed(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusFailed)

	entry, err := svc.Cancel(context.Background(), "user-1", "entry-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if entry.Status != StatusCancelled {
		t.Fatalf("expected status cancelled, got %s", entry.Status)
	}
}

func TestTransitionsScopedToOwner(t *testing.T) {
	svc, queueRepo, _ := newServiceFixture(t)
	seedEntry(t, queueRepo, StatusPending)

	if _, err := svc.MarkSubmitted(context.Background(), "other-user", "entry-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign user, got %v", err)
	}
}
