package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
	"github.com/Apurer/roopet-api/internal/domains/users/ports"
)

// DefaultSessionTTL is how long a login stays valid when none is configured.
const DefaultSessionTTL = 24 * time.Hour

// Service exposes user bounded context use cases.
type Service struct {
	repo         ports.Repository
	sessions     ports.SessionStore
	now          func() time.Time
	sessionTTL   time.Duration
	passwordCost int
	newToken     func() string
}

// Option customises the Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSessionTTL sets how long issued sessions live.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithPasswordCost sets the bcrypt cost used at sign up.
func WithPasswordCost(cost int) Option {
	return func(s *Service) { s.passwordCost = cost }
}

// WithTokenSource overrides session token generation.
func WithTokenSource(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newToken = fn
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:       repo,
		sessions:   sessions,
		now:        time.Now,
		sessionTTL: DefaultSessionTTL,
		newToken:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// SignUp registers a new account keyed by its email.
func (s *Service) SignUp(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password, s.passwordCost, s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// Login verifies credentials and opens a session.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	id := domain.NormalizeEmail(email)
	if id == "" || password == "" {
		return nil, mapError(domain.ErrWrongPassword)
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.CheckPassword(password); err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	session := domain.Session{
		Token:     s.newToken(),
		UserID:    user.ID,
		PetCode:   user.PetCode,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &session, nil
}

// Session resolves a bearer token. Expired sessions are removed and rejected.
func (s *Service) Session(ctx context.Context, token string) (*domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrSessionNotFound)
	}
	session, err := s.sessions.Load(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if session.Expired(s.now()) {
		_ = s.sessions.Delete(ctx, token)
		return nil, mapError(ports.ErrSessionNotFound)
	}
	return session, nil
}

// Logout drops the session. Unknown tokens are ignored.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return s.sessions.Delete(ctx, token)
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.Get(ctx, domain.NormalizeEmail(id))
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

// LinkPet points the user at a pet and updates their live sessions.
func (s *Service) LinkPet(ctx context.Context, userID, petCode string) error {
	id := domain.NormalizeEmail(userID)
	code := strings.TrimSpace(petCode)
	if _, err := s.repo.Merge(ctx, id, ports.Patch{PetCode: &code}); err != nil {
		return mapError(err)
	}
	return s.sessions.RelinkPet(ctx, id, code)
}

var _ ports.Service = (*Service)(nil)
