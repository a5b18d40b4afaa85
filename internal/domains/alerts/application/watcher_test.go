package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/roopet-api/internal/domains/alerts/adapters/memory"
	petstypes "github.com/Apurer/roopet-api/internal/domains/pets/application/types"
	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

type scriptedReader struct {
	mu    sync.Mutex
	calls int
	pet   *petsdomain.Pet
	fail  map[int]bool
}

func (r *scriptedReader) GetPet(_ context.Context, _ string) (*petstypes.PetProjection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fail[r.calls] {
		return nil, errors.New("store unavailable")
	}
	return petstypes.NewPetProjection(r.pet), nil
}

func (r *scriptedReader) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestWatcher_PollKeepsGoingAfterFailures(t *testing.T) {
	reader := &scriptedReader{
		pet:  lowPet(t, petsdomain.Stats{Hunger: 5, Happiness: 90, Cleanliness: 90}),
		fail: map[int]bool{1: true},
	}
	gateway := memory.NewGateway()
	now := t0
	watcher := NewWatcher(reader, gateway, "ABC123", WithWatcherClock(func() time.Time { return now }))
	ctx := context.Background()

	watcher.Poll(ctx)
	assert.Empty(t, gateway.Shown())

	watcher.Poll(ctx)
	require.Len(t, gateway.Shown(), 1)

	now = now.Add(5 * time.Minute)
	watcher.Poll(ctx)
	assert.Len(t, gateway.Shown(), 1)

	now = now.Add(26 * time.Minute)
	watcher.Poll(ctx)
	assert.Len(t, gateway.Shown(), 2)
}

func TestWatcher_RunStopsOnCancel(t *testing.T) {
	reader := &scriptedReader{pet: lowPet(t, petsdomain.Stats{Hunger: 90, Happiness: 90, Cleanliness: 90})}
	watcher := NewWatcher(reader, memory.NewGateway(), "ABC123", WithPollInterval(5*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watcher.Run(ctx) }()

	require.Eventually(t, func() bool { return reader.Calls() >= 3 }, time.Second, time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
