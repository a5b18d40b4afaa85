package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign up.
const MinPasswordLength = 6

var (
	ErrInvalidEmail    = errors.New("email must contain a local part and a domain")
	ErrPasswordTooWeak = errors.New("password is too short")
	ErrWrongPassword   = errors.New("password does not match")
)

// User is an account that can own at most one shared pet.
type User struct {
	ID           string
	PasswordHash string
	PetCode      string
	CreatedAt    time.Time
}

// NormalizeEmail trims and lower-cases an email so it can act as the user id.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail performs the light structural check done at sign up.
func ValidateEmail(email string) error {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t\n") {
		return ErrInvalidEmail
	}
	return nil
}

// NewUser validates the credentials and stores a salted bcrypt hash of the password.
// A cost of zero selects bcrypt.DefaultCost.
func NewUser(email, password string, cost int, now time.Time) (*User, error) {
	id := NormalizeEmail(email)
	if err := ValidateEmail(id); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrPasswordTooWeak
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, err
	}
	return &User{ID: id, PasswordHash: string(hash), CreatedAt: now}, nil
}

// CheckPassword compares the candidate with the stored hash.
func (u *User) CheckPassword(candidate string) error {
	if u == nil || u.PasswordHash == "" {
		return ErrWrongPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// LinkPet records the pet the user belongs to, replacing any earlier link.
func (u *User) LinkPet(code string) {
	u.PetCode = strings.TrimSpace(code)
}

// Session binds an opaque bearer token to a user for a limited time.
type Session struct {
	Token     string
	UserID    string
	PetCode   string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is no longer usable at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
