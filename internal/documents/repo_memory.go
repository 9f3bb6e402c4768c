package documents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	docs   map[string][]Document // userId -> documents
	fields map[string][]Field    // userId -> fields
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:   make(map[string][]Document),
		fields: make(map[string][]Field),
	}
}

// CreateWithFields stores the document and its fields together.
func (r *MemoryRepo) CreateWithFields(ctx context.Context, doc Document, fields []Field) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.docs[doc.UserID] {
		if existing.FileName == doc.FileName {
			return ErrDuplicate
		}
	}

	r.docs[doc.UserID] = append(r.docs[doc.UserID], doc)
	r.fields[doc.UserID] = append(r.fields[doc.UserID], fields...)
	return nil
}

// ExistsByUserAndName reports whether a document already exists for the pair.
func (r *MemoryRepo) ExistsByUserAndName(ctx context.Context, userID, fileName string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, doc := range r.docs[userID] {
		if doc.FileName == fileName {
			return true, nil
		}
	}
	return false, nil
}

// ListByUser returns the user's documents, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	userDocs := r.docs[userID]
	r.mu.RUnlock()

	docs := make([]Document, len(userDocs))
	copy(docs, userDocs)
	sort.SliceStable(docs, func(i, j int) bool {
		return docs[i].ProcessedAt.After(docs[j].ProcessedAt)
	})
	return docs, nil
}

// ListFieldsByUser returns all extracted fields owned by the user.
func (r *MemoryRepo) ListFieldsByUser(ctx context.Context, userID string) ([]Field, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Field, len(r.fields[userID]))
	copy(out, r.fields[userID])
	return out, nil
}

var _ Repo = (*MemoryRepo)(nil)
