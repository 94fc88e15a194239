package autoapply

import (
	"errors"
	"time"

	"autoapply-backend/internal/autoapply/eligibility"
)

var (
	ErrNotFound          = errors.New("queue entry not found")
	ErrInvalidTransition = errors.New("invalid queue status transition")
)

// QueueEntry is one candidate job slated for automated application.
type QueueEntry struct {
	ID         string               `json:"id"`
	UserID     string               `json:"userId"`
	RuleID     string               `json:"ruleId"`
	PersonaID  string               `json:"personaId"`
	JobID      string               `json:"jobId"`
	Status     Status               `json:"status"`
	MatchScore int                  `json:"matchScore"`
	Severity   eligibility.Severity `json:"severity"`
	Reasons    []string             `json:"reasons"`
	Computed   eligibility.Computed `json:"computed"`
	CreatedAt  time.Time            `json:"createdAt"`
	UpdatedAt  time.Time            `json:"updatedAt"`
}

// ActionLog records one auto-apply decision or state change for auditing.
type ActionLog struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	RuleID       string    `json:"ruleId"`
	JobID        string    `json:"jobId"`
	Action       string    `json:"action"`
	Status       string    `json:"status"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Action log statuses written by the builder and submitter.
const (
	LogStatusQueued    = "queued"
	LogStatusSkipped   = "skipped"
	LogStatusSubmitted = "submitted"
	LogStatusFailed    = "failed"
)
