package patient

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates no registration exists for the user.
	ErrNotFound = errors.New("patient not found")

	// ErrAlreadyRegistered indicates the user already completed registration.
	ErrAlreadyRegistered = errors.New("patient already registered")

	// ErrUserUnknown indicates the userID the registration targets does not
	// exist in the directory.
	ErrUserUnknown = errors.New("no account for user")
)

// Repository is the patient collection boundary.
type Repository interface {
	Create(ctx context.Context, p *Patient) (*Patient, error)
	ListByUserID(ctx context.Context, userID string) ([]*Patient, error)
}

// FileStore uploads identification documents. Upload returns the stored
// file's ID and its public view URL.
type FileStore interface {
	Upload(ctx context.Context, filename, mimeType string, content []byte) (fileID, viewURL string, err error)
}
