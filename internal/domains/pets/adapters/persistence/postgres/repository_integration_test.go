//go:build integration
// +build integration

// To enable gopls support for this file, add the following to your VSCode settings.json:
// "gopls": {
//   "buildFlags": ["-tags=integration"]
// }

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	petspostgres "github.com/Apurer/roopet-api/internal/domains/pets/adapters/persistence/postgres"
	"github.com/Apurer/roopet-api/internal/domains/pets/domain"
	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
	"github.com/Apurer/roopet-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/roopet-api/internal/platform/postgres"
)

func setupPostgresContainer(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("roopet_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := platformpostgres.Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	t.Cleanup(func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			_ = sqlDB.Close()
		}
		_ = pgContainer.Terminate(ctx)
	})
	return db
}

func newPet(t *testing.T, code string, now time.Time) *domain.Pet {
	t.Helper()
	pet, err := domain.NewPet(code, domain.SpeciesCat, "Mochi", "ana@example.com", now)
	require.NoError(t, err)
	return pet
}

func TestPostgresRepository_CreateAndGet(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.Create(ctx, newPet(t, "ABC123", now)))

	got, err := repo.Get(ctx, "ABC123")
	require.NoError(t, err)
	assert.Equal(t, "Mochi", got.Name)
	assert.Equal(t, domain.SpeciesCat, got.Species)
	assert.Equal(t, domain.Stats{Hunger: 100, Happiness: 100, Cleanliness: 100}, got.Stats)
	assert.Equal(t, []string{"ana@example.com"}, got.Owners)
	assert.True(t, now.Equal(got.LastUpdated))

	exists, err := repo.Exists(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, exists)

	err = repo.Create(ctx, newPet(t, "ABC123", now))
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)

	_, err = repo.Get(ctx, "ZZZ999")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestPostgresRepository_UpdateWritesOnlyChangedColumns(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, newPet(t, "FEED01", now)))

	updated, err := repo.Update(ctx, "FEED01", func(p *domain.Pet) (bool, error) {
		p.Coins = 50
		return true, p.Purchase(mustAccessory(t, 4), now.Add(time.Minute))
	})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.Coins)

	got, err := repo.Get(ctx, "FEED01")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Coins)
	assert.Equal(t, []domain.AccessoryID{4}, got.Accessories)

	_, err = repo.Update(ctx, "FEED01", func(p *domain.Pet) (bool, error) {
		return true, p.Purchase(mustAccessory(t, 6), now.Add(2*time.Minute))
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	got, err = repo.Get(ctx, "FEED01")
	require.NoError(t, err)
	assert.Equal(t, 25, got.Coins)
	assert.Len(t, got.Accessories, 1)
}

func TestPostgresRepository_ConcurrentActionsAreSerialized(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := petspostgres.NewRepository(setupPostgresContainer(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, repo.Create(ctx, newPet(t, "RACE01", now)))

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "RACE01", func(p *domain.Pet) (bool, error) {
				_, err := p.Apply(domain.ActionExercise, now)
				return true, err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, "RACE01")
	require.NoError(t, err)
	assert.Equal(t, workers*domain.ActionReward, got.Coins)
}

func TestPostgresIdempotencyStore_Conflict(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store := petspostgres.NewIdempotencyStore(setupPostgresContainer(t))
	ctx := context.Background()

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", PetCode: "ABC123"})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", saved.PetCode)

	again, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", PetCode: "ABC123"})
	require.NoError(t, err)
	assert.Equal(t, saved.PetCode, again.PetCode)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", PetCode: "XYZ789"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "ABC123", existing.PetCode)
}

func mustAccessory(t *testing.T, id domain.AccessoryID) domain.Accessory {
	t.Helper()
	item, err := domain.FindAccessory(id)
	require.NoError(t, err)
	return item
}
