package types

import "github.com/Apurer/roopet-api/internal/domains/pets/domain"

// CreatePetInput carries the adoption request of a first owner.
type CreatePetInput struct {
	Species        domain.Species
	Name           string
	OwnerID        string
	IdempotencyKey string
}

// JoinPetInput carries a join code entered by a prospective co-owner.
type JoinPetInput struct {
	Code    string
	OwnerID string
}

// ApplyActionInput identifies the pet and the interaction.
type ApplyActionInput struct {
	Code   string
	Action domain.Action
}

// BuyAccessoryInput identifies the pet and the catalog entry to buy.
type BuyAccessoryInput struct {
	Code        string
	AccessoryID domain.AccessoryID
}
