package resumes

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"

	"autoapply-backend/internal/extract"
	"autoapply-backend/internal/shared/storage/object"
	"autoapply-backend/internal/shared/telemetry"
)

// Service contains business logic for resumes.
type Service struct {
	Store object.ObjectStore
	Repo  Repo
	Log   *telemetry.Logger
}

// Upload saves the file to object storage, extracts its text, and records
// the resume. Extraction failure does not fail the upload; a resume without
// extracted text simply has less to feed generated answers.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Resume, error) {
	if fileName == "" {
		return Resume{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userID, fileName, r)
	if err != nil {
		return Resume{}, err
	}

	text, err := extract.ExtractText(ctx, s.Store, storageKey, mimeType, fileName)
	if err != nil {
		if s.Log != nil {
			s.Log.Error("resume text extraction failed", map[string]any{
				"user_id": userID,
				"key":     storageKey,
				"error":   err.Error(),
			})
		}
		text = ""
	}

	resume := Resume{
		ID:            uuid.NewString(),
		UserID:        userID,
		FileName:      fileName,
		MimeType:      mimeType,
		SizeBytes:     size,
		StorageKey:    storageKey,
		ExtractedText: text,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

// Get fetches a resume owned by the user.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns resumes for the user, newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Delete removes a resume record. The stored object is left in place; keys
// are content-addressed per user and cheap to retain.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	return s.Repo.Delete(ctx, userID, resumeID)
}
