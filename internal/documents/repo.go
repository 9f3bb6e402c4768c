package documents

import "context"

// Repo defines persistence operations for documents and their fields.
type Repo interface {
	// CreateWithFields persists a document and its extracted fields in one
	// logical operation. A document with the same (user, file name) pair
	// yields ErrDuplicate and leaves no rows behind.
	CreateWithFields(ctx context.Context, doc Document, fields []Field) error
	ExistsByUserAndName(ctx context.Context, userID, fileName string) (bool, error)
	// ListByUser returns the user's documents, newest first.
	ListByUser(ctx context.Context, userID string) ([]Document, error)
	ListFieldsByUser(ctx context.Context, userID string) ([]Field, error)
}
