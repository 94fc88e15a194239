package generate

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for application answer generation.
type Client interface {
	GenerateAnswers(ctx context.Context, input Input) (json.RawMessage, error)
}

// Input captures everything the generator needs about one application.
type Input struct {
	ResumeText     string
	JobTitle       string
	Company        string
	JobDescription string
	Questions      []string
	PromptVersion  string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// GenerateAnswers returns ErrNotImplemented.
func (PlaceholderClient) GenerateAnswers(ctx context.Context, input Input) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
