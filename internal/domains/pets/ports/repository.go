package ports

import (
	"context"
	"errors"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

var (
	ErrNotFound      = errors.New("pet not found")
	ErrAlreadyExists = errors.New("pet code already in use")
)

// MutateFunc changes a pet inside an atomic read-modify-write. Returning changed=false
// skips the write; a non-nil error aborts the update and leaves the stored pet untouched.
type MutateFunc func(pet *domain.Pet) (changed bool, err error)

// Repository is the PetStore: keyed by join code, one atomic update per call.
type Repository interface {
	// Create stores a new pet, failing with ErrAlreadyExists when the code is taken.
	Create(ctx context.Context, pet *domain.Pet) error
	Get(ctx context.Context, code string) (*domain.Pet, error)
	Exists(ctx context.Context, code string) (bool, error)
	// Update applies fn to the current pet under a per-code lock and persists it when fn reports a change.
	Update(ctx context.Context, code string, fn MutateFunc) (*domain.Pet, error)
}
