package ports

import (
	"context"
	"errors"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

// Patch lists the user fields a Merge may overwrite. Nil fields are left alone.
type Patch struct {
	PetCode *string
}

// Repository is the user store.
type Repository interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	// Create fails with ErrAlreadyExists when the id is taken.
	Create(ctx context.Context, user *domain.User) error
	// Merge applies patch to an existing user and fails with ErrNotFound otherwise.
	Merge(ctx context.Context, id string, patch Patch) (*domain.User, error)
}
