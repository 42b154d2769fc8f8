package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// Client abstracts LLM providers for document parsing.
type Client interface {
	ParseResume(ctx context.Context, input ParseResumeInput) (json.RawMessage, error)
	ParseJobAd(ctx context.Context, input ParseJobAdInput) (json.RawMessage, error)
}

// ParseResumeInput captures the inputs for extracting resume fragments.
type ParseResumeInput struct {
	DocumentText  string
	PromptVersion string
}

// ParseJobAdInput captures the inputs for structuring a job posting.
type ParseJobAdInput struct {
	AdText        string
	SourceURL     string
	PromptVersion string
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// ParseResume returns ErrNotImplemented.
func (PlaceholderClient) ParseResume(ctx context.Context, input ParseResumeInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}

// ParseJobAd returns ErrNotImplemented.
func (PlaceholderClient) ParseJobAd(ctx context.Context, input ParseJobAdInput) (json.RawMessage, error) {
	_ = ctx
	_ = input
	return nil, ErrNotImplemented
}
