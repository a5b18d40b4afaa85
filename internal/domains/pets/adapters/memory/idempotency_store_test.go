package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

func TestIdempotencyStore_Retention(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore()
	store.WithClock(func() time.Time { return now })
	store.WithRetention(time.Hour)

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", PetCode: "ABC123"})
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	record, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "ABC123", record.PetCode)

	now = now.Add(2 * time.Minute)
	record, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, record)

	_, err = store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", PetCode: "XYZ789"})
	assert.NoError(t, err)
}

func TestIdempotencyStore_ZeroRetentionKeepsKeys(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	store := NewIdempotencyStore()
	store.WithClock(func() time.Time { return now })
	store.WithRetention(0)

	_, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h1", PetCode: "ABC123"})
	require.NoError(t, err)

	now = now.Add(365 * 24 * time.Hour)
	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k1", RequestHash: "h2", PetCode: "XYZ789"})
	assert.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	require.NotNil(t, existing)
	assert.Equal(t, "ABC123", existing.PetCode)
}
