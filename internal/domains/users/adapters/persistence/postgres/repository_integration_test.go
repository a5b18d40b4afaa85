//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Apurer/roopet-api/internal/domains/users/domain"
	"github.com/Apurer/roopet-api/internal/domains/users/ports"
	"github.com/Apurer/roopet-api/internal/platform/migrations"
	platformpostgres "github.com/Apurer/roopet-api/internal/platform/postgres"
)

func setupUsersPostgresContainer(t *testing.T) *gorm.DB {
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

func TestRepository_CreateGetMerge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	repo := NewRepository(setupUsersPostgresContainer(t))
	ctx := context.Background()

	user, err := domain.NewUser("ana@example.com", "secret1", bcrypt.MinCost, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, user), ports.ErrAlreadyExists)

	fetched, err := repo.Get(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Empty(t, fetched.PetCode)
	assert.NoError(t, fetched.CheckPassword("secret1"))

	code := "ABC123"
	merged, err := repo.Merge(ctx, "ana@example.com", ports.Patch{PetCode: &code})
	require.NoError(t, err)
	assert.Equal(t, "ABC123", merged.PetCode)

	_, err = repo.Merge(ctx, "ghost@example.com", ports.Patch{PetCode: &code})
	assert.ErrorIs(t, err, ports.ErrNotFound)
	_, err = repo.Get(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestSessionStore_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	store := NewSessionStore(setupUsersPostgresContainer(t))
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	live := domain.Session{Token: "live", UserID: "ana@example.com", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := domain.Session{Token: "stale", UserID: "ana@example.com", CreatedAt: now, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, store.Save(ctx, live))
	require.NoError(t, store.Save(ctx, stale))

	require.NoError(t, store.RelinkPet(ctx, "ana@example.com", "XYZ789"))
	loaded, err := store.Load(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "XYZ789", loaded.PetCode)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
	_, err = store.Load(ctx, "stale")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	require.NoError(t, store.Delete(ctx, "live"))
	_, err = store.Load(ctx, "live")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
