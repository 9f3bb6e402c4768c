package llm

import (
	"context"
	"errors"
)

// Client abstracts the generative model used for document processing.
type Client interface {
	// ExtractDocument sends the PDF bytes with the extraction prompt and
	// returns the model's raw text response.
	ExtractDocument(ctx context.Context, pdf []byte) (string, error)
	// CategorizeFields sends the merged field mapping (rendered as JSON)
	// with the taxonomy prompt and returns the model's raw text response.
	CategorizeFields(ctx context.Context, fieldsJSON string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("model client not configured")

// PlaceholderClient is a stub implementation used when no API key is set.
type PlaceholderClient struct{}

func (PlaceholderClient) ExtractDocument(ctx context.Context, pdf []byte) (string, error) {
	_ = ctx
	_ = pdf
	return "", ErrNotConfigured
}

func (PlaceholderClient) CategorizeFields(ctx context.Context, fieldsJSON string) (string, error) {
	_ = ctx
	_ = fieldsJSON
	return "", ErrNotConfigured
}
