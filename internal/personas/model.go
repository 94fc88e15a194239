package personas

import (
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("persona not found")
	ErrInvalidInput = errors.New("invalid persona")
)

// Persona is a named application profile. A persona without a resume attached
// cannot be used for automatic submission.
type Persona struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Headline  string    `json:"headline"`
	ResumeID  *string   `json:"resumeId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
