package object

import (
	"context"
	"io"
)

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	// Save writes the reader contents under the given storage key and
	// returns a publicly resolvable URL for the object.
	Save(ctx context.Context, storageKey string, contentType string, r io.Reader) (publicURL string, sizeBytes int64, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
