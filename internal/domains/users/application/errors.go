package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
	"github.com/Apurer/roopet-api/internal/domains/users/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid user input")
	// ErrUnauthorized covers wrong passwords and unknown or expired sessions.
	ErrUnauthorized = errors.New("unauthorized")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrPasswordTooWeak) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrWrongPassword) ||
		errors.Is(err, ports.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return err
}
