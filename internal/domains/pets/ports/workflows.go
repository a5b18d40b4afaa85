package ports

import (
	"context"

	pettypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
)

// WorkflowOrchestrator exposes durable workflow operations required by the pets bounded context.
type WorkflowOrchestrator interface {
	CreatePet(ctx context.Context, input pettypes.CreatePetInput) (*pettypes.PetProjection, error)
}

// OwnerLinker records which pet a user owns once adoption or joining succeeded.
type OwnerLinker interface {
	LinkPet(ctx context.Context, userID, petCode string) error
}
