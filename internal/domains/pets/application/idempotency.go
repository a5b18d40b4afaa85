package application

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	pettypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
)

type normalizedCreatePetInput struct {
	Species string `json:"species"`
	Name    string `json:"name"`
	OwnerID string `json:"ownerId"`
}

// FingerprintCreatePet builds a deterministic hash of the adoption payload (excluding the idempotency key).
func FingerprintCreatePet(input pettypes.CreatePetInput) (string, error) {
	payload, err := json.Marshal(normalizedCreatePetInput{
		Species: strings.ToLower(strings.TrimSpace(string(input.Species))),
		Name:    strings.TrimSpace(input.Name),
		OwnerID: strings.TrimSpace(input.OwnerID),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
