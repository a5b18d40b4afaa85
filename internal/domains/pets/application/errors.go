package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid pet input")
	// ErrAlreadyOwner is returned when a user joins a pet they already co-own.
	ErrAlreadyOwner = errors.New("already an owner of this pet")
	// ErrInsufficientFunds is returned when a purchase costs more coins than the pet has.
	ErrInsufficientFunds = errors.New("insufficient coins")
	// ErrCodeCollision is returned when every allocated join code was taken by a concurrent adoption.
	ErrCodeCollision = errors.New("join code collision")
	// ErrStoreUnavailable wraps store timeouts; callers may retry.
	ErrStoreUnavailable = errors.New("pet store unavailable")
	// ErrIdempotencyConflict is returned when an idempotency key is reused for a different request.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrEmptyName),
		errors.Is(err, domain.ErrUnknownSpecies),
		errors.Is(err, domain.ErrUnknownAction),
		errors.Is(err, domain.ErrInvalidCode),
		errors.Is(err, domain.ErrUnknownCategory),
		errors.Is(err, domain.ErrNoOwner):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, domain.ErrAlreadyOwner):
		return fmt.Errorf("%w: %w", ErrAlreadyOwner, err)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return fmt.Errorf("%w: %w", ErrInsufficientFunds, err)
	case errors.Is(err, domain.ErrUnknownAccessory):
		return fmt.Errorf("%w: %w", ports.ErrNotFound, err)
	case errors.Is(err, ports.ErrIdempotencyConflict):
		return fmt.Errorf("%w: %w", ErrIdempotencyConflict, err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
