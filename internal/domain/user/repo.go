package user

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no account exists with the given ID.
	ErrNotFound = errors.New("user not found")

	// ErrEmailTaken indicates the directory already holds an account with
	// the submitted email address.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository is the user directory boundary.
type Repository interface {
	Create(ctx context.Context, acct *Account) (*Account, error)
	GetByID(ctx context.Context, id string) (*Account, error)
	FindByEmail(ctx context.Context, email string) ([]*Account, error)
}
