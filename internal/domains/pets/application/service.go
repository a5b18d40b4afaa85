package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	types "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

// DefaultStoreTimeout bounds a single store round-trip.
const DefaultStoreTimeout = 5 * time.Second

// Service orchestrates the pets bounded context use cases.
type Service struct {
	repo         ports.Repository
	codes        *CodeRegistry
	idempotency  ports.IdempotencyStore
	events       ports.EventPublisher
	now          func() time.Time
	storeTimeout time.Duration
}

// Option customises the pets service.
type Option func(*Service)

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithStoreTimeout overrides DefaultStoreTimeout. Zero disables the bound.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.storeTimeout = d
		}
	}
}

// WithIdempotencyStore enables replay of adoption requests carrying an idempotency key.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) {
		s.idempotency = store
	}
}

// WithEventPublisher forwards domain events after each persisted mutation.
func WithEventPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) {
		s.events = publisher
	}
}

// WithCodeRegistry replaces the default join code registry.
func WithCodeRegistry(registry *CodeRegistry) Option {
	return func(s *Service) {
		if registry != nil {
			s.codes = registry
		}
	}
}

// NewService wires the pets service with its dependencies.
func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{
		repo:         repo,
		now:          time.Now,
		storeTimeout: DefaultStoreTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.codes == nil {
		s.codes = NewCodeRegistry(repo)
	}
	return s
}

// CreatePet adopts a new pet for its first owner under a freshly allocated join code.
func (s *Service) CreatePet(ctx context.Context, input types.CreatePetInput) (*types.PetProjection, error) {
	species := domain.Species(strings.ToLower(strings.TrimSpace(string(input.Species))))
	if strings.TrimSpace(input.Name) == "" {
		return nil, mapError(domain.ErrEmptyName)
	}
	if !species.Valid() {
		return nil, mapError(domain.ErrUnknownSpecies)
	}
	if strings.TrimSpace(input.OwnerID) == "" {
		return nil, mapError(domain.ErrNoOwner)
	}

	key := strings.TrimSpace(input.IdempotencyKey)
	var fingerprint string
	if key != "" && s.idempotency != nil {
		var err error
		fingerprint, err = FingerprintCreatePet(input)
		if err != nil {
			return nil, err
		}
		replayed, err := s.replay(ctx, key, fingerprint)
		if err != nil || replayed != nil {
			return replayed, err
		}
	}

	pet, err := s.adopt(ctx, species, input)
	if err != nil {
		return nil, err
	}

	if key != "" && s.idempotency != nil {
		stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: fingerprint, PetCode: pet.Code})
		if err != nil {
			// A concurrent twin request won the key; hand back its pet instead.
			if errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil && stored.RequestHash == fingerprint {
				return s.load(ctx, stored.PetCode)
			}
			return nil, mapError(err)
		}
	}

	s.publish(ctx, pet)
	return types.NewPetProjection(pet), nil
}

func (s *Service) adopt(ctx context.Context, species domain.Species, input types.CreatePetInput) (*domain.Pet, error) {
	for attempt := 0; attempt < s.codes.maxAttempts; attempt++ {
		code, err := s.generateCode(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		pet, err := domain.NewPet(code, species, input.Name, input.OwnerID, s.now())
		if err != nil {
			return nil, mapError(err)
		}
		err = s.withStore(ctx, func(ctx context.Context) error {
			return s.repo.Create(ctx, pet)
		})
		if errors.Is(err, ports.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, mapError(err)
		}
		return pet, nil
	}
	return nil, fmt.Errorf("%w: %d adoptions lost the race for their code", ErrCodeCollision, s.codes.maxAttempts)
}

func (s *Service) generateCode(ctx context.Context) (string, error) {
	var code string
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		code, err = s.codes.Generate(ctx)
		return err
	})
	return code, err
}

func (s *Service) replay(ctx context.Context, key, fingerprint string) (*types.PetProjection, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, mapError(err)
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != fingerprint {
		return nil, fmt.Errorf("%w: key %q", ErrIdempotencyConflict, key)
	}
	return s.load(ctx, record.PetCode)
}

func (s *Service) load(ctx context.Context, code string) (*types.PetProjection, error) {
	var pet *domain.Pet
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		pet, err = s.repo.Get(ctx, code)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	return types.NewPetProjection(pet), nil
}

// JoinPet adds the caller as co-owner of the pet identified by a join code.
func (s *Service) JoinPet(ctx context.Context, input types.JoinPetInput) (*types.PetProjection, error) {
	code, err := s.codes.Normalize(input.Code)
	if err != nil {
		return nil, mapError(err)
	}
	ownerID := strings.TrimSpace(input.OwnerID)
	if ownerID == "" {
		return nil, mapError(domain.ErrNoOwner)
	}
	now := s.now()
	pet, err := s.update(ctx, code, func(p *domain.Pet) (bool, error) {
		return true, p.AddOwner(ownerID, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, pet)
	return types.NewPetProjection(pet), nil
}

// GetPet returns the pet after settling elapsed decay. Decay is written only when
// at least one whole point accrued, so back-to-back reads write at most once.
func (s *Service) GetPet(ctx context.Context, code string) (*types.PetProjection, error) {
	code, err := s.codes.Normalize(code)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	var current *domain.Pet
	err = s.withStore(ctx, func(ctx context.Context) error {
		var err error
		current, err = s.repo.Get(ctx, code)
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	if domain.DecayFor(now.Sub(current.LastUpdated)) <= 0 {
		return types.NewPetProjection(current), nil
	}

	var decay int
	pet, err := s.update(ctx, code, func(p *domain.Pet) (bool, error) {
		decay = p.ApplyDecay(now)
		return decay > 0, nil
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, pet)
	projection := types.NewPetProjection(pet)
	projection.DecayApplied = decay
	return projection, nil
}

// ApplyAction performs feed, play, clean or exercise and awards coins.
func (s *Service) ApplyAction(ctx context.Context, input types.ApplyActionInput) (*types.PetProjection, error) {
	action := domain.Action(strings.ToLower(strings.TrimSpace(string(input.Action))))
	if !action.Valid() {
		return nil, mapError(domain.ErrUnknownAction)
	}
	code, err := s.codes.Normalize(input.Code)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	var earned int
	pet, err := s.update(ctx, code, func(p *domain.Pet) (bool, error) {
		var err error
		earned, err = p.Apply(action, now)
		return err == nil, err
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, pet)
	projection := types.NewPetProjection(pet)
	projection.CoinsEarned = earned
	return projection, nil
}

// BuyAccessory spends the pet's coins on a catalog accessory.
func (s *Service) BuyAccessory(ctx context.Context, input types.BuyAccessoryInput) (*types.PetProjection, error) {
	code, err := s.codes.Normalize(input.Code)
	if err != nil {
		return nil, mapError(err)
	}
	item, err := domain.FindAccessory(input.AccessoryID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now()
	pet, err := s.update(ctx, code, func(p *domain.Pet) (bool, error) {
		return true, p.Purchase(item, now)
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, pet)
	projection := types.NewPetProjection(pet)
	projection.Purchased = &item
	return projection, nil
}

// Catalog lists the shop, optionally filtered to one category.
func (s *Service) Catalog(_ context.Context, category domain.Category) ([]domain.Accessory, error) {
	items, err := domain.CatalogByCategory(domain.Category(strings.ToLower(strings.TrimSpace(string(category)))))
	if err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (s *Service) update(ctx context.Context, code string, fn ports.MutateFunc) (*domain.Pet, error) {
	var pet *domain.Pet
	err := s.withStore(ctx, func(ctx context.Context) error {
		var err error
		pet, err = s.repo.Update(ctx, code, fn)
		return err
	})
	return pet, err
}

func (s *Service) withStore(ctx context.Context, call func(context.Context) error) error {
	if s.storeTimeout <= 0 {
		return call(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return call(ctx)
}

func (s *Service) publish(ctx context.Context, pet *domain.Pet) {
	if pet == nil {
		return
	}
	events := pet.Events()
	pet.ClearEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	// Delivery is best effort and never undoes a persisted mutation.
	_ = s.events.Publish(ctx, events...)
}

var _ ports.Service = (*Service)(nil)
