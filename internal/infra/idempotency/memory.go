package idempotency

import (
	"context"
	"sync"
	"time"

	"club-scheduler/internal/pkg/clock"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type memoryEntry struct {
	rec       shared.IdempotencyRecord
	expiresAt time.Time
}

// MemoryStore keeps claims in process. It backs tests and deployments that
// run without Redis.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	clock   clock.Clock
}

func NewMemoryStore(clk clock.Clock, ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: map[string]memoryEntry{}, ttl: ttl, clock: clk}
}

var _ shared.IdempotencyStore = (*MemoryStore)(nil)

func (s *MemoryStore) Claim(_ context.Context, scope string, key uuid.UUID, requestHash string) (*shared.IdempotencyRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := redisKey(scope, key)
	now := s.clock.Now()
	if e, ok := s.entries[k]; ok && now.Before(e.expiresAt) {
		rec := e.rec
		return &rec, false, nil
	}

	rec := shared.IdempotencyRecord{
		Key:         key,
		Scope:       scope,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
	}
	s.entries[k] = memoryEntry{rec: rec, expiresAt: now.Add(s.ttl)}
	return &rec, true, nil
}

func (s *MemoryStore) Complete(_ context.Context, scope string, key uuid.UUID, resultID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := redisKey(scope, key)
	e, ok := s.entries[k]
	if !ok {
		return errs.NotFound("idempotency key is not claimed")
	}
	e.rec.Status = shared.IdempotencyStatusCompleted
	e.rec.ResultID = &resultID
	e.expiresAt = s.clock.Now().Add(s.ttl)
	s.entries[k] = e
	return nil
}

func (s *MemoryStore) Release(_ context.Context, scope string, key uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, redisKey(scope, key))
	return nil
}
