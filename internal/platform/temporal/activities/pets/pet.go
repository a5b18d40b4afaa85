package pets

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	petsapp "github.com/Apurer/roopet-api/internal/domains/pets/application"
	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	petsports "github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

const (
	// CreatePetActivityName adopts a pet and allocates its join code.
	CreatePetActivityName = "pets.activities.CreatePet"
	// LinkOwnerActivityName points the adopting user's account at the new pet.
	LinkOwnerActivityName = "pets.activities.LinkOwner"

	// Application error types that must not be retried.
	InvalidInputErrorType        = "InvalidInput"
	IdempotencyConflictErrorType = "IdempotencyConflict"
)

// LinkOwnerInput names the user and the pet they now own.
type LinkOwnerInput struct {
	OwnerID string
	PetCode string
}

// Activities groups activities that operate on the pets bounded context.
type Activities struct {
	service petsports.Service
	linker  petsports.OwnerLinker
}

// NewActivities wires the pets collaborators into the Temporal activities bundle.
func NewActivities(service petsports.Service, linker petsports.OwnerLinker) *Activities {
	return &Activities{service: service, linker: linker}
}

// CreatePet adopts a new pet and returns its projection.
func (a *Activities) CreatePet(ctx context.Context, input petstypes.CreatePetInput) (*petstypes.PetProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.service == nil {
		logger.Error("create pet activity not initialized", "owner", input.OwnerID)
		return nil, errors.New("create pet activity not initialized")
	}
	logger.Info("CreatePet activity started", "owner", input.OwnerID, "species", string(input.Species))
	projection, err := a.service.CreatePet(ctx, input)
	if err != nil {
		logger.Error("CreatePet activity failed", "owner", input.OwnerID, "error", err)
		return nil, nonRetryable(err)
	}
	if projection != nil && projection.Pet != nil {
		logger.Info("CreatePet activity completed", "petCode", projection.Pet.Code)
	}
	return projection, nil
}

// LinkOwner stores the pet code on the adopting user.
func (a *Activities) LinkOwner(ctx context.Context, input LinkOwnerInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil {
		return errors.New("link owner activity not initialized")
	}
	if a.linker == nil {
		logger.Info("owner linker not configured; skipping", "petCode", input.PetCode)
		return nil
	}

	var hb linkHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("LinkOwner already completed in prior attempt; skipping", "petCode", input.PetCode)
		return nil
	}

	logger.Info("LinkOwner activity started", "owner", input.OwnerID, "petCode", input.PetCode)
	if err := a.linker.LinkPet(ctx, input.OwnerID, input.PetCode); err != nil {
		logger.Error("LinkOwner activity failed", "owner", input.OwnerID, "petCode", input.PetCode, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, linkHeartbeat{Completed: true})
	logger.Info("LinkOwner activity completed", "petCode", input.PetCode)
	return nil
}

type linkHeartbeat struct {
	Completed bool
}

func nonRetryable(err error) error {
	switch {
	case errors.Is(err, petsapp.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), InvalidInputErrorType, err)
	case errors.Is(err, petsapp.ErrIdempotencyConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), IdempotencyConflictErrorType, err)
	default:
		return err
	}
}
