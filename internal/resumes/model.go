package resumes

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid input")
)

// Resume is an uploaded resume file plus its extracted text. The extracted
// text is what personas carry into generated application answers.
type Resume struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	FileName      string    `json:"fileName"`
	MimeType      string    `json:"mimeType"`
	SizeBytes     int64     `json:"sizeBytes"`
	StorageKey    string    `json:"-"`
	ExtractedText string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}
