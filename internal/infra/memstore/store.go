// Package memstore is an arena-style in-memory store keyed by id. It
// implements the same UnitOfWork as the Postgres store and backs tests and
// STORE_DRIVER=memory.
package memstore

import (
	"context"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"club-scheduler/internal/domain/activity"
	"club-scheduler/internal/domain/registration"
	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/domain/resource"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

var errReadOnly = errs.New("write attempted in a read-only transaction")

type NotificationJob struct {
	ID      uuid.UUID
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type state struct {
	resources     map[uuid.UUID]*resource.Resource
	reservations  map[uuid.UUID]*reservation.Reservation
	activities    map[uuid.UUID]*activity.Activity
	registrations map[uuid.UUID]*registration.Registration
	jobs          []NotificationJob
}

func newState() *state {
	return &state{
		resources:     map[uuid.UUID]*resource.Resource{},
		reservations:  map[uuid.UUID]*reservation.Reservation{},
		activities:    map[uuid.UUID]*activity.Activity{},
		registrations: map[uuid.UUID]*registration.Registration{},
	}
}

// clone copies the maps only. Stored entities are never mutated in place:
// writes replace them with fresh copies, so sharing them is safe.
func (s *state) clone() *state {
	return &state{
		resources:     maps.Clone(s.resources),
		reservations:  maps.Clone(s.reservations),
		activities:    maps.Clone(s.activities),
		registrations: maps.Clone(s.registrations),
		jobs:          slices.Clone(s.jobs),
	}
}

// Store serializes all writers on one mutex, which subsumes the per-key
// locks the Postgres store takes. A write works on a copy of the committed
// state that is published only if fn succeeds and ctx is still live.
type Store struct {
	writeMu sync.Mutex
	mu      sync.RWMutex
	current *state
	logger  *slog.Logger
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{current: newState(), logger: logger}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, keys []shared.LockKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	draft := s.snapshot().clone()
	if err := fn(ctx, &memTx{st: draft, writable: true, logger: s.logger}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		s.logger.WarnContext(ctx, "discarding transaction after context ended",
			"locks", shared.NormalizeLockKeys(keys), "error", err.Error())
		return err
	}

	s.mu.Lock()
	s.current = draft
	s.mu.Unlock()
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &memTx{st: s.snapshot(), logger: s.logger})
}

// Jobs returns the committed notification outbox.
func (s *Store) Jobs() []NotificationJob {
	return slices.Clone(s.snapshot().jobs)
}

func (s *Store) snapshot() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

type memTx struct {
	st       *state
	writable bool
	logger   *slog.Logger
}

func (t *memTx) Resources() shared.ResourceRepository         { return &resourceRepo{t} }
func (t *memTx) Reservations() shared.ReservationRepository   { return &reservationRepo{t} }
func (t *memTx) Activities() shared.ActivityRepository        { return &activityRepo{t} }
func (t *memTx) Registrations() shared.RegistrationRepository { return &registrationRepo{t} }
func (t *memTx) Notifications() shared.NotificationRepository { return &notificationRepo{t} }

func (t *memTx) checkWritable() error {
	if !t.writable {
		return errReadOnly
	}
	return nil
}
