package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/shared/telemetry"
)

// Service contains business logic for job ingestion and match queries.
type Service struct {
	Jobs     JobRepo
	Matches  MatchRepo
	Seen     SeenStore
	Detector *ATSDetector
	Log      *telemetry.Logger
}

// IngestInput carries one posting from an ingestion source.
type IngestInput struct {
	ExternalURL string
	Company     string
	Title       string
	Description string
	Location    string
	Source      string
	PostedAt    time.Time
}

// Ingest records a posting unless its URL was already seen. It returns the
// stored job and whether it was newly inserted.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (Job, bool, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" {
		return Job{}, false, fmt.Errorf("%w: title and company are required", ErrInvalidInput)
	}

	url := strings.TrimSpace(in.ExternalURL)
	if url != "" && s.Seen != nil {
		already, err := s.Seen.MarkSeen(ctx, url)
		if err != nil {
			// Dedupe is advisory. Losing it means a possible duplicate row,
			// not a lost posting.
			if s.Log != nil {
				s.Log.Error("seen-store lookup failed", map[string]any{"url": url, "error": err.Error()})
			}
		} else if already {
			return Job{}, false, nil
		}
	}

	job := Job{
		ID:          uuid.NewString(),
		ExternalURL: url,
		Company:     in.Company,
		Title:       in.Title,
		Description: in.Description,
		Location:    in.Location,
		Source:      in.Source,
		PostedAt:    in.PostedAt,
		CreatedAt:   time.Now().UTC(),
	}
	if s.Detector != nil && url != "" {
		job.ATSVendor = s.Detector.Detect(url)
	}
	if job.PostedAt.IsZero() {
		job.PostedAt = job.CreatedAt
	}

	if err := s.Jobs.Create(ctx, job); err != nil {
		return Job{}, false, err
	}
	return job, true, nil
}

// Get fetches a job by id.
func (s *Service) Get(ctx context.Context, jobID string) (Job, error) {
	return s.Jobs.GetByID(ctx, jobID)
}

// ListRecent returns recently posted jobs.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]Job, error) {
	return s.Jobs.ListRecent(ctx, limit, offset)
}

// RecordMatch upserts a persona-job match score.
func (s *Service) RecordMatch(ctx context.Context, userID, personaID, jobID string, score int) (Match, error) {
	if score < 0 || score > 100 {
		return Match{}, fmt.Errorf("%w: match score must be between 0 and 100", ErrInvalidInput)
	}
	match := Match{
		ID:         uuid.NewString(),
		UserID:     userID,
		PersonaID:  personaID,
		JobID:      jobID,
		MatchScore: score,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.Matches.Upsert(ctx, match); err != nil {
		return Match{}, err
	}
	return match, nil
}

// ListMatches returns the user's matches newest-first.
func (s *Service) ListMatches(ctx context.Context, userID string, limit, offset int) ([]Match, error) {
	return s.Matches.ListByUser(ctx, userID, limit, offset)
}
