package mapper

import (
	"time"

	userdomain "github.com/Apurer/roopet-api/internal/domains/users/domain"
)

// Credentials is the sign up and login payload.
type Credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// User represents the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID        string    `json:"id"`
	PetCode   string    `json:"petCode,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Session is returned by a successful login.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		PetCode:   user.PetCode,
		CreatedAt: user.CreatedAt,
	}
}

// FromDomainSession pairs a session with its user.
func FromDomainSession(session *userdomain.Session, user *userdomain.User) Session {
	if session == nil {
		return Session{}
	}
	out := Session{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      FromDomainUser(user),
	}
	if user == nil {
		out.User = User{ID: session.UserID, PetCode: session.PetCode}
	}
	return out
}
