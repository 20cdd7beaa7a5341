package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/intake/intake/internal/platform/backend"
)

// BackendRepository implements Repository against the external user
// directory.
type BackendRepository struct {
	client *backend.Client
}

func NewBackendRepository(client *backend.Client) *BackendRepository {
	return &BackendRepository{client: client}
}

func (r *BackendRepository) Create(ctx context.Context, acct *Account) (*Account, error) {
	created, err := r.client.CreateUser(ctx, acct.ID, acct.Name, acct.Email, acct.Phone)
	if err != nil {
		if errors.Is(err, backend.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrEmailTaken, acct.Email)
		}
		return nil, err
	}
	return fromBackend(created), nil
}

func (r *BackendRepository) GetByID(ctx context.Context, id string) (*Account, error) {
	u, err := r.client.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return fromBackend(u), nil
}

func (r *BackendRepository) FindByEmail(ctx context.Context, email string) ([]*Account, error) {
	users, err := r.client.ListUsersByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	accts := make([]*Account, len(users))
	for i, u := range users {
		accts[i] = fromBackend(u)
	}
	return accts, nil
}

func fromBackend(u *backend.User) *Account {
	return &Account{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
