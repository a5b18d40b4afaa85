package types

import (
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

// PetProjection transports the pet aggregate together with what the operation changed.
type PetProjection struct {
	Pet *domain.Pet
	// CoinsEarned is set by actions.
	CoinsEarned int
	// DecayApplied is the per-stat decay settled by this call.
	DecayApplied int
	// Purchased is set by BuyAccessory.
	Purchased *domain.Accessory
}

// NewPetProjection wraps a detached copy of the aggregate.
func NewPetProjection(pet *domain.Pet) *PetProjection {
	if pet == nil {
		return nil
	}
	return &PetProjection{Pet: pet.Clone()}
}
