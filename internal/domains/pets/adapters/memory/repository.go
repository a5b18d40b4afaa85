package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory PetStore used for development and tests. Updates on
// one code serialize on that pet's lock; different pets proceed in parallel.
type Repository struct {
	mu   sync.RWMutex
	pets map[string]*storedPet
}

type storedPet struct {
	mu  sync.Mutex
	pet *domain.Pet
}

// NewRepository constructs an empty in-memory store.
func NewRepository() *Repository {
	return &Repository{pets: map[string]*storedPet{}}
}

// Create inserts a pet whose code is not yet taken.
func (r *Repository) Create(ctx context.Context, pet *domain.Pet) error {
	if pet == nil {
		return errors.New("cannot create nil pet")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := pet.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pets[pet.Code]; ok {
		return ports.ErrAlreadyExists
	}
	r.pets[pet.Code] = &storedPet{pet: pet.Clone()}
	return nil
}

// Get returns a detached copy of the stored pet.
func (r *Repository) Get(ctx context.Context, code string) (*domain.Pet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := r.entry(code)
	if !ok {
		return nil, ports.ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.pet.Clone(), nil
}

// Exists reports whether a pet holds the code.
func (r *Repository) Exists(ctx context.Context, code string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	_, ok := r.entry(code)
	return ok, nil
}

// Update runs fn against a working copy under the pet's lock and stores it when changed.
func (r *Repository) Update(ctx context.Context, code string, fn ports.MutateFunc) (*domain.Pet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entry, ok := r.entry(code)
	if !ok {
		return nil, ports.ErrNotFound
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()

	working := entry.pet.Clone()
	changed, err := fn(working)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := working.Validate(); err != nil {
			return nil, err
		}
		entry.pet = working.Clone()
	}
	return working, nil
}

func (r *Repository) entry(code string) (*storedPet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.pets[code]
	return entry, ok
}
