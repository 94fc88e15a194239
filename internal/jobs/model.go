package jobs

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("job not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Job is a posting produced by ingestion. ExternalURL is the application
// target; a job without one cannot be auto-applied to.
type Job struct {
	ID          string    `json:"id"`
	ExternalURL string    `json:"externalUrl"`
	Company     string    `json:"company"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Source      string    `json:"source"`
	ATSVendor   string    `json:"atsVendor,omitempty"`
	PostedAt    time.Time `json:"postedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Match is a precomputed fit score between a persona and a job, 0 to 100.
type Match struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	PersonaID  string    `json:"personaId"`
	JobID      string    `json:"jobId"`
	MatchScore int       `json:"matchScore"`
	CreatedAt  time.Time `json:"createdAt"`
}
