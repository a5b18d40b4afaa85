package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var adoptedAt = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func newTestPet(t *testing.T) *Pet {
	t.Helper()
	pet, err := NewPet("ABC123", SpeciesDog, "  Rex  ", "ana@example.com", adoptedAt)
	require.NoError(t, err)
	pet.ClearEvents()
	return pet
}

func TestNewPet(t *testing.T) {
	pet, err := NewPet("ABC123", SpeciesDog, "  Rex  ", "ana@example.com", adoptedAt)
	require.NoError(t, err)
	assert.Equal(t, "Rex", pet.Name)
	assert.Equal(t, Stats{Hunger: 100, Happiness: 100, Cleanliness: 100}, pet.Stats)
	assert.Zero(t, pet.Coins)
	assert.Empty(t, pet.Accessories)
	assert.Equal(t, []string{"ana@example.com"}, pet.Owners)
	assert.Equal(t, adoptedAt, pet.CreatedAt)
	assert.Equal(t, adoptedAt, pet.LastUpdated)
	require.Len(t, pet.Events(), 1)
	assert.Equal(t, "pets.pet.adopted", pet.Events()[0].EventName())
}

func TestNewPet_Validation(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		species Species
		petName string
		owner   string
		want    error
	}{
		{name: "blank name", code: "ABC123", species: SpeciesCat, petName: "   ", owner: "a", want: ErrEmptyName},
		{name: "unknown species", code: "ABC123", species: "dragon", petName: "Rex", owner: "a", want: ErrUnknownSpecies},
		{name: "lower case code", code: "abc123", species: SpeciesCat, petName: "Rex", owner: "a", want: ErrInvalidCode},
		{name: "short code", code: "AB12", species: SpeciesCat, petName: "Rex", owner: "a", want: ErrInvalidCode},
		{name: "no owner", code: "ABC123", species: SpeciesCat, petName: "Rex", owner: " ", want: ErrNoOwner},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPet(tt.code, tt.species, tt.petName, tt.owner, adoptedAt)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecayFor(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{elapsed: -time.Hour, want: 0},
		{elapsed: 0, want: 0},
		{elapsed: 30 * time.Minute, want: 0},
		{elapsed: 45 * time.Minute, want: 1},
		{elapsed: 10 * time.Hour, want: 15},
		{elapsed: 24 * time.Hour, want: 36},
		{elapsed: 30 * time.Hour, want: 36},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DecayFor(tt.elapsed), tt.elapsed.String())
	}
}

func TestApplyDecay(t *testing.T) {
	pet := newTestPet(t)
	decay := pet.ApplyDecay(adoptedAt.Add(10 * time.Hour))
	assert.Equal(t, 15, decay)
	assert.Equal(t, Stats{Hunger: 85, Happiness: 85, Cleanliness: 85}, pet.Stats)
	assert.Equal(t, adoptedAt.Add(10*time.Hour), pet.LastUpdated)
}

func TestApplyDecay_CapsAtTwentyFourHours(t *testing.T) {
	pet := newTestPet(t)
	pet.ApplyDecay(adoptedAt.Add(30 * time.Hour))
	assert.Equal(t, Stats{Hunger: 64, Happiness: 64, Cleanliness: 64}, pet.Stats)
}

func TestApplyDecay_ClampsAtZero(t *testing.T) {
	pet := newTestPet(t)
	pet.Stats = Stats{Hunger: 10, Happiness: 50, Cleanliness: 0}
	pet.ApplyDecay(adoptedAt.Add(24 * time.Hour))
	assert.Equal(t, Stats{Hunger: 0, Happiness: 14, Cleanliness: 0}, pet.Stats)
}

func TestApplyDecay_NoWholePointLeavesPetUntouched(t *testing.T) {
	pet := newTestPet(t)
	assert.Zero(t, pet.ApplyDecay(adoptedAt.Add(20*time.Minute)))
	assert.Equal(t, adoptedAt, pet.LastUpdated)
	assert.Empty(t, pet.Events())
}

func TestApplyDecay_ClockSkewIsIgnored(t *testing.T) {
	pet := newTestPet(t)
	assert.Zero(t, pet.ApplyDecay(adoptedAt.Add(-5*time.Hour)))
	assert.Equal(t, adoptedAt, pet.LastUpdated)
}

func TestApply(t *testing.T) {
	pet := newTestPet(t)
	pet.Stats = Stats{Hunger: 90, Happiness: 40, Cleanliness: 10}

	earned, err := pet.Apply(ActionFeed, adoptedAt)
	require.NoError(t, err)
	assert.Equal(t, 5, earned)
	assert.Equal(t, 100, pet.Stats.Hunger)

	_, err = pet.Apply(ActionPlay, adoptedAt)
	require.NoError(t, err)
	assert.Equal(t, 65, pet.Stats.Happiness)

	_, err = pet.Apply(ActionClean, adoptedAt)
	require.NoError(t, err)
	assert.Equal(t, 35, pet.Stats.Cleanliness)

	assert.Equal(t, 15, pet.Coins)
}

func TestApply_ExerciseEarnsCoinsOnly(t *testing.T) {
	pet := newTestPet(t)
	before := pet.Stats
	later := adoptedAt.Add(10 * time.Minute)

	earned, err := pet.Apply(ActionExercise, later)
	require.NoError(t, err)
	assert.Equal(t, 5, earned)
	assert.Equal(t, before, pet.Stats)
	assert.Equal(t, 5, pet.Coins)
	assert.Equal(t, later, pet.LastUpdated)
}

func TestApply_LeavesOtherStatsUntouched(t *testing.T) {
	pet := newTestPet(t)
	later := adoptedAt.Add(10 * time.Hour)
	_, err := pet.Apply(ActionFeed, later)
	require.NoError(t, err)
	assert.Equal(t, Stats{Hunger: 100, Happiness: 100, Cleanliness: 100}, pet.Stats)
	assert.Equal(t, 5, pet.Coins)
	assert.Equal(t, later, pet.LastUpdated)
}

func TestPurchase_DoesNotDecay(t *testing.T) {
	pet := newTestPet(t)
	pet.Coins = 50
	collar, err := FindAccessory(4)
	require.NoError(t, err)

	require.NoError(t, pet.Purchase(collar, adoptedAt.Add(10*time.Hour)))
	assert.Equal(t, Stats{Hunger: 100, Happiness: 100, Cleanliness: 100}, pet.Stats)
	assert.Equal(t, 25, pet.Coins)
}

func TestApply_UnknownAction(t *testing.T) {
	pet := newTestPet(t)
	_, err := pet.Apply("dance", adoptedAt)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Zero(t, pet.Coins)
}

func TestPurchase(t *testing.T) {
	bowTie, err := FindAccessory(1)
	require.NoError(t, err)

	t.Run("insufficient coins leaves pet unchanged", func(t *testing.T) {
		pet := newTestPet(t)
		pet.Coins = 40
		err := pet.Purchase(bowTie, adoptedAt)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.Equal(t, 40, pet.Coins)
		assert.Empty(t, pet.Accessories)
	})

	t.Run("exact price spends everything", func(t *testing.T) {
		pet := newTestPet(t)
		pet.Coins = 50
		require.NoError(t, pet.Purchase(bowTie, adoptedAt))
		assert.Zero(t, pet.Coins)
		assert.Equal(t, 1, pet.CountAccessory(bowTie.ID))
	})

	t.Run("duplicates are allowed", func(t *testing.T) {
		pet := newTestPet(t)
		pet.Coins = 100
		require.NoError(t, pet.Purchase(bowTie, adoptedAt))
		require.NoError(t, pet.Purchase(bowTie, adoptedAt))
		assert.Equal(t, 2, pet.CountAccessory(bowTie.ID))
	})
}

func TestAddOwner(t *testing.T) {
	pet := newTestPet(t)
	require.NoError(t, pet.AddOwner("bo@example.com", adoptedAt.Add(time.Hour)))
	assert.True(t, pet.HasOwner("bo@example.com"))
	assert.Equal(t, adoptedAt, pet.LastUpdated)

	assert.ErrorIs(t, pet.AddOwner("bo@example.com", adoptedAt), ErrAlreadyOwner)
	assert.Len(t, pet.Owners, 2)
}

func TestClone_IsDeep(t *testing.T) {
	pet := newTestPet(t)
	pet.Accessories = []AccessoryID{1}
	clone := pet.Clone()
	clone.Owners[0] = "mallory"
	clone.Accessories[0] = 8
	assert.Equal(t, "ana@example.com", pet.Owners[0])
	assert.Equal(t, AccessoryID(1), pet.Accessories[0])
}

func TestCodeHelpers(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeCode("  abc123 "))
	assert.NoError(t, ValidateCode("Z9Z9Z9"))
	assert.ErrorIs(t, ValidateCode("ABC12!"), ErrInvalidCode)
	assert.ErrorIs(t, ValidateCode("ABC1234"), ErrInvalidCode)
}

func TestCatalogByCategory(t *testing.T) {
	all, err := CatalogByCategory("")
	require.NoError(t, err)
	assert.Len(t, all, 8)

	hats, err := CatalogByCategory(CategoryHats)
	require.NoError(t, err)
	require.Len(t, hats, 2)
	assert.Equal(t, "Hat", hats[0].Name)
	assert.Equal(t, "Crown", hats[1].Name)

	_, err = CatalogByCategory("shoes")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = FindAccessory(99)
	assert.ErrorIs(t, err, ErrUnknownAccessory)
}
