package users

import "context"

// Repo defines persistence operations for user accounts.
type Repo interface {
	// Create persists a new user. An existing account with the same email
	// (case-insensitive) yields ErrDuplicate.
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
}
