package account

import (
	"context"
	"time"
)

// Store is the account persistence boundary. Every implementation binds values
// as parameters and never builds queries from input.
type Store interface {
	// Insert creates the account row. A row with the same email yields a ConflictError
	// with Field "email".
	Insert(ctx context.Context, in NewAccountInput) (Account, error)

	// FindByEmail returns ErrNotFound (as NotFoundError) when no row exists.
	FindByEmail(ctx context.Context, email string) (Account, error)

	// UpdateActivationFields stores a freshly issued code and its expiration.
	UpdateActivationFields(ctx context.Context, email, code string, expiration time.Time) error

	// SetActivated flips activated to true only while it is still false.
	// When the row is already activated it returns a ConflictError with Field "activated".
	SetActivated(ctx context.Context, email string, at time.Time) error
}
