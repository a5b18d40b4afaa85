package mapper

import (
	"strings"
	"time"

	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

// Stats is the HTTP representation of the three well-being stats.
type Stats struct {
	Hunger      int `json:"hunger"`
	Happiness   int `json:"happiness"`
	Cleanliness int `json:"cleanliness"`
}

// Pet is the HTTP view of the shared pet.
type Pet struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Stats       Stats     `json:"stats"`
	Coins       int       `json:"coins"`
	Accessories []int64   `json:"accessories"`
	Owners      []string  `json:"owners"`
	CreatedAt   time.Time `json:"createdAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PetResult wraps a pet with what the request changed.
type PetResult struct {
	Pet          Pet        `json:"pet"`
	CoinsEarned  int        `json:"coinsEarned,omitempty"`
	DecayApplied int        `json:"decayApplied,omitempty"`
	Purchased    *Accessory `json:"purchased,omitempty"`
	Message      string     `json:"message,omitempty"`
}

// Accessory is a shop entry.
type Accessory struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Price       int    `json:"price"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CreatePetRequest is the adoption payload.
type CreatePetRequest struct {
	Species string `json:"species" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// JoinPetRequest carries a join code typed by the user.
type JoinPetRequest struct {
	Code string `json:"code" binding:"required"`
}

// BuyAccessoryRequest names the catalog entry to buy.
type BuyAccessoryRequest struct {
	AccessoryID int64 `json:"accessoryId" binding:"required"`
}

// ToCreatePetInput maps the adoption payload for the given owner.
func ToCreatePetInput(req CreatePetRequest, ownerID, idempotencyKey string) petstypes.CreatePetInput {
	return petstypes.CreatePetInput{
		Species:        domain.Species(strings.ToLower(strings.TrimSpace(req.Species))),
		Name:           req.Name,
		OwnerID:        ownerID,
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// FromDomainPet maps the aggregate to its transport shape.
func FromDomainPet(p *domain.Pet) Pet {
	if p == nil {
		return Pet{}
	}
	accessories := make([]int64, 0, len(p.Accessories))
	for _, id := range p.Accessories {
		accessories = append(accessories, int64(id))
	}
	return Pet{
		Code:    p.Code,
		Name:    p.Name,
		Species: string(p.Species),
		Stats: Stats{
			Hunger:      p.Stats.Hunger,
			Happiness:   p.Stats.Happiness,
			Cleanliness: p.Stats.Cleanliness,
		},
		Coins:       p.Coins,
		Accessories: accessories,
		Owners:      append([]string{}, p.Owners...),
		CreatedAt:   p.CreatedAt,
		LastUpdated: p.LastUpdated,
	}
}

// FromProjection maps a service result.
func FromProjection(p *petstypes.PetProjection) PetResult {
	if p == nil {
		return PetResult{}
	}
	result := PetResult{
		Pet:          FromDomainPet(p.Pet),
		CoinsEarned:  p.CoinsEarned,
		DecayApplied: p.DecayApplied,
	}
	if p.Purchased != nil {
		item := FromAccessory(*p.Purchased)
		result.Purchased = &item
	}
	return result
}

// FromAccessory maps a catalog entry.
func FromAccessory(a domain.Accessory) Accessory {
	return Accessory{
		ID:          int64(a.ID),
		Name:        a.Name,
		Category:    string(a.Category),
		Price:       a.Price,
		Description: a.Description,
		Icon:        a.Icon,
	}
}

// FromCatalog maps a list of catalog entries.
func FromCatalog(items []domain.Accessory) []Accessory {
	out := make([]Accessory, 0, len(items))
	for _, item := range items {
		out = append(out, FromAccessory(item))
	}
	return out
}
