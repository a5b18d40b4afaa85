package ports

import (
	"context"

	pettypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

// Service defines the pets use cases exposed to adapters (inbound/driving port).
type Service interface {
	CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error)
	JoinPet(ctx context.Context, input pettypes.JoinPetInput) (*pettypes.PetProjection, error)
	GetPet(ctx context.Context, code string) (*pettypes.PetProjection, error)
	ApplyAction(ctx context.Context, input pettypes.ApplyActionInput) (*pettypes.PetProjection, error)
	BuyAccessory(ctx context.Context, input pettypes.BuyAccessoryInput) (*pettypes.PetProjection, error)
	Catalog(ctx context.Context, category domain.Category) ([]domain.Accessory, error)
}
