package ports

import (
	"context"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
)

// Service exposes user bounded context use cases to adapters.
type Service interface {
	SignUp(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.Session, error)
	Session(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	LinkPet(ctx context.Context, userID, petCode string) error
}
