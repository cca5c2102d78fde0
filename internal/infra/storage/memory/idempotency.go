package memory

import (
	"context"
	"sync"
	"time"

	"staydesk/internal/app/middleware"
)

// IdempotencyStore keeps applied event outcomes for TTL. Expired records are
// dropped lazily on lookup.
type IdempotencyStore struct {
	TTL   time.Duration
	Clock func() time.Time

	mu      sync.Mutex
	records map[string]middleware.IdempotencyRecord
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{TTL: ttl, records: map[string]middleware.IdempotencyRecord{}}
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	if ok && s.TTL > 0 && s.now().Sub(rec.OccurredAt) > s.TTL {
		delete(s.records, key)
		return middleware.IdempotencyRecord{}, false, nil
	}
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(ctx context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.OccurredAt.IsZero() {
		rec.OccurredAt = s.now()
	}
	s.records[rec.Key] = rec
	return nil
}

func (s *IdempotencyStore) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now().UTC()
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
