package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/roopet-api/internal/domains/alerts/domain"
	"github.com/Apurer/roopet-api/internal/domains/alerts/ports"
	petsdomain "github.com/Apurer/roopet-api/internal/domains/pets/domain"
)

// Tracker rate-limits low-stat alerts for one watching session.
type Tracker struct {
	gateway  ports.Gateway
	cooldown time.Duration

	mu             sync.Mutex
	lastNotifiedAt *time.Time
}

// TrackerOption customises a Tracker.
type TrackerOption func(*Tracker)

// WithCooldown overrides domain.Cooldown.
func WithCooldown(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.cooldown = d
		}
	}
}

// NewTracker returns a tracker that has never notified.
func NewTracker(gateway ports.Gateway, opts ...TrackerOption) *Tracker {
	t := &Tracker{gateway: gateway, cooldown: domain.Cooldown}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// Evaluate shows one combined alert when any stat is low and the cooldown has
// passed since the last alert. It reports whether an alert fired.
func (t *Tracker) Evaluate(ctx context.Context, pet *petsdomain.Pet, now time.Time) (bool, error) {
	if pet == nil {
		return false, errors.New("nil pet")
	}
	low := domain.LowCategories(pet.Stats)
	if len(low) == 0 {
		return false, nil
	}

	t.mu.Lock()
	if t.lastNotifiedAt != nil && now.Sub(*t.lastNotifiedAt) <= t.cooldown {
		t.mu.Unlock()
		return false, nil
	}
	fired := now
	t.lastNotifiedAt = &fired
	t.mu.Unlock()

	if t.gateway == nil {
		return true, nil
	}
	_, err := t.gateway.Show(ctx, domain.LowStatsNotification(pet.Code, pet.Name, low))
	return true, err
}

// LastNotifiedAt returns when the tracker last fired, if ever.
func (t *Tracker) LastNotifiedAt() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastNotifiedAt == nil {
		return time.Time{}, false
	}
	return *t.lastNotifiedAt, true
}

// Reset forgets the last alert, as when a new session starts.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.lastNotifiedAt = nil
	t.mu.Unlock()
}
