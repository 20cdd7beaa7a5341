package appointment

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the appointment does not exist.
	ErrNotFound = errors.New("appointment not found")

	// ErrNotRegistered indicates the user has no patient record yet; the
	// registration step must come first.
	ErrNotRegistered = errors.New("user has no patient record")
)

// Repository is the appointment collection boundary.
type Repository interface {
	Create(ctx context.Context, a *Appointment) (*Appointment, error)
	ListByUserID(ctx context.Context, userID string) ([]*Appointment, error)
}
