package memory

import (
	"context"
	"sync"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
	"github.com/Apurer/roopet-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps users in a map guarded by a RWMutex.
type Repository struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

func NewRepository() *Repository {
	return &Repository{users: make(map[string]domain.User)}
}

func (r *Repository) Get(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return &user, nil
}

func (r *Repository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; ok {
		return ports.ErrAlreadyExists
	}
	r.users[user.ID] = *user
	return nil
}

func (r *Repository) Merge(_ context.Context, id string, patch ports.Patch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	if patch.PetCode != nil {
		user.LinkPet(*patch.PetCode)
	}
	r.users[id] = user
	return &user, nil
}
