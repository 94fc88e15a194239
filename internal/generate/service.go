package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"autoapply-backend/internal/jobs"
	"autoapply-backend/internal/personas"
	"autoapply-backend/internal/resumes"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Service produces application materials for a persona-job pair.
type Service struct {
	Client   Client
	Personas personas.Repo
	Resumes  resumes.Repo
	Jobs     jobs.JobRepo
}

// ForApplication generates a cover letter and screening answers. The persona
// must have a resume with extracted text; there is nothing to ground the
// answers on otherwise.
func (s *Service) ForApplication(ctx context.Context, userID, personaID, jobID string, questions []string) (json.RawMessage, error) {
	persona, err := s.Personas.GetByID(ctx, userID, personaID)
	if err != nil {
		if errors.Is(err, personas.ErrNotFound) {
			return nil, fmt.Errorf("%w: persona", ErrNotFound)
		}
		return nil, err
	}
	if persona.ResumeID == nil || *persona.ResumeID == "" {
		return nil, fmt.Errorf("%w: persona has no resume attached", ErrInvalidInput)
	}

	resume, err := s.Resumes.GetByID(ctx, userID, *persona.ResumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return nil, fmt.Errorf("%w: resume", ErrNotFound)
		}
		return nil, err
	}
	if resume.ExtractedText == "" {
		return nil, fmt.Errorf("%w: resume has no extracted text", ErrInvalidInput)
	}

	job, err := s.Jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, fmt.Errorf("%w: job", ErrNotFound)
		}
		return nil, err
	}

	return s.Client.GenerateAnswers(ctx, Input{
		ResumeText:     resume.ExtractedText,
		JobTitle:       job.Title,
		Company:        job.Company,
		JobDescription: job.Description,
		Questions:      questions,
		PromptVersion:  PromptVersionV1,
	})
}
