package ports

import (
	"context"

	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
)

// PetReader fetches the current pet view. The pets service satisfies it.
type PetReader interface {
	GetPet(ctx context.Context, code string) (*petstypes.PetProjection, error)
}
