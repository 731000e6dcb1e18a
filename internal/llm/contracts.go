package llm

import (
	"context"
	"errors"
)

var (
	// ErrMissingCredentials means no API key is configured for the model provider.
	ErrMissingCredentials = errors.New("llm: missing API credentials")
	// ErrEmptyResponse means the provider answered without any content.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Image is an inline image attached to a completion request.
type Image struct {
	Bytes    []byte
	MimeType string
}

type CompletionOptions struct {
	JSONMode    bool
	MaxTokens   int
	Temperature float32
}

// VisionCompleter sends one prompt plus one image to a multimodal model and returns the raw
// text content of the first choice.
type VisionCompleter interface {
	Complete(ctx context.Context, prompt string, image Image, opts CompletionOptions) (string, error)
}
