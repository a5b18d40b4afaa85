package ports

import (
	"context"
	"errors"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists bearer sessions.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	// Load returns ErrSessionNotFound for unknown tokens. Expiry is checked by the caller.
	Load(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
	// RelinkPet rewrites the pet code carried by every session of the user.
	RelinkPet(ctx context.Context, userID, petCode string) error
}
