package application

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

// DefaultMaxCodeAttempts bounds how many candidate codes are drawn before giving up.
const DefaultMaxCodeAttempts = 10

// ErrCodeAllocation is returned when no free code was found within the attempt bound.
var ErrCodeAllocation = errors.New("unable to allocate a unique join code")

// CodeSource draws one random candidate code.
type CodeSource func() (string, error)

// CodeRegistry allocates join codes that are not yet used by any stored pet.
type CodeRegistry struct {
	repo        ports.Repository
	source      CodeSource
	maxAttempts int
}

// CodeRegistryOption customises a CodeRegistry.
type CodeRegistryOption func(*CodeRegistry)

// WithCodeSource replaces the random source, mainly for deterministic tests.
func WithCodeSource(source CodeSource) CodeRegistryOption {
	return func(r *CodeRegistry) {
		if source != nil {
			r.source = source
		}
	}
}

// WithMaxCodeAttempts overrides DefaultMaxCodeAttempts.
func WithMaxCodeAttempts(n int) CodeRegistryOption {
	return func(r *CodeRegistry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// NewCodeRegistry builds a registry checking candidates against repo.
func NewCodeRegistry(repo ports.Repository, opts ...CodeRegistryOption) *CodeRegistry {
	r := &CodeRegistry{repo: repo, source: RandomCode, maxAttempts: DefaultMaxCodeAttempts}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Generate returns a code absent from the store at the time of the check. The
// final guarantee comes from Repository.Create rejecting duplicates.
func (r *CodeRegistry) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		code, err := r.source()
		if err != nil {
			return "", err
		}
		exists, err := r.repo.Exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrCodeAllocation, r.maxAttempts)
}

// Normalize converts user input into canonical form and validates it.
func (r *CodeRegistry) Normalize(raw string) (string, error) {
	code := domain.NormalizeCode(raw)
	if err := domain.ValidateCode(code); err != nil {
		return "", err
	}
	return code, nil
}

// RandomCode draws CodeLength symbols uniformly from CodeAlphabet using crypto/rand.
func RandomCode() (string, error) {
	alphabet := big.NewInt(int64(len(domain.CodeAlphabet)))
	buf := make([]byte, domain.CodeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		buf[i] = domain.CodeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
