package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/roopet-api/internal/domains/pets/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// DefaultIdempotencyRetention is how long an adoption key can be replayed.
const DefaultIdempotencyRetention = 24 * time.Hour

// IdempotencyStore keeps adoption idempotency keys in process memory.
type IdempotencyStore struct {
	mu        sync.Mutex
	records   map[string]ports.IdempotencyRecord
	now       func() time.Time
	retention time.Duration
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records:   map[string]ports.IdempotencyRecord{},
		now:       time.Now,
		retention: DefaultIdempotencyRetention,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithRetention changes how long keys are honoured. Zero keeps them forever.
func (s *IdempotencyStore) WithRetention(d time.Duration) {
	if d >= 0 {
		s.retention = d
	}
}

// Get returns the live record for key, or nil when absent or expired.
func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.live(key)
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// Save stores a new key, or returns the existing record when it names the same request and pet.
func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.live(record.Key); ok {
		if existing.RequestHash != record.RequestHash || existing.PetCode != record.PetCode {
			return &existing, ports.ErrIdempotencyConflict
		}
		return &existing, nil
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[record.Key] = record
	return &record, nil
}

func (s *IdempotencyStore) live(key string) (ports.IdempotencyRecord, bool) {
	record, ok := s.records[key]
	if !ok {
		return ports.IdempotencyRecord{}, false
	}
	if s.retention > 0 && s.now().Sub(record.CreatedAt) > s.retention {
		delete(s.records, key)
		return ports.IdempotencyRecord{}, false
	}
	return record, true
}
