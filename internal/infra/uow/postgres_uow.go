package uow

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"club-scheduler/internal/infra"
	"club-scheduler/internal/infra/repository"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultMaxRetries = 3
	backoffBase       = 100 * time.Millisecond

	advisoryLockSQL = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
)

type PostgresUoW struct {
	pool       *pgxpool.Pool
	logger     *slog.Logger
	maxRetries int
}

func NewPostgresUoW(pool *pgxpool.Pool, logger *slog.Logger, maxRetries int) *PostgresUoW {
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}
	return &PostgresUoW{
		pool:       pool,
		logger:     logger,
		maxRetries: maxRetries,
	}
}

var _ shared.UnitOfWork = (*PostgresUoW)(nil)

// Within runs fn under ReadCommitted after taking a transaction-scoped
// advisory lock per key. Locks are released on commit or rollback.
func (u *PostgresUoW) Within(ctx context.Context, keys []shared.LockKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	keys = shared.NormalizeLockKeys(keys)
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, keys, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

// Avoids defer accumulation in retry loops to prevent connection leaks
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, keys []shared.LockKey, fn func(ctx context.Context, tx shared.Tx) error) error {
	for attempt := 0; attempt <= u.maxRetries; attempt++ {
		pgxTx, err := u.pool.BeginTx(ctx, options)
		if err != nil {
			return errs.Mark(err, shared.ErrTransactionBegin)
		}

		err = u.acquireLocks(ctx, pgxTx, keys)
		if err == nil {
			err = fn(ctx, u.newTx(pgxTx))
		}
		if err == nil {
			if err = pgxTx.Commit(ctx); err == nil {
				return nil
			}
			err = errs.Mark(err, shared.ErrTransactionCommit)
		}

		// A cancelled ctx would abort the rollback itself.
		if rollbackErr := pgxTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("rollback failed", "attempt", attempt+1, "error", rollbackErr.Error())
			}
		}

		if !shouldRetry(err, attempt, u.maxRetries) {
			if isRetryableError(err) && attempt == u.maxRetries {
				u.logger.Error("transaction failed after max retries",
					"attempts", attempt+1,
					"locks", keys,
					"error", err.Error())
				return errs.Mark(err, shared.ErrMaxRetriesExceeded)
			}
			return err
		}

		waitTime := calculateBackoff(attempt, backoffBase)

		u.logger.Warn("retrying transaction due to retryable error",
			"attempt", attempt+1,
			"wait_ms", waitTime.Milliseconds(),
			"locks", keys,
			"error", err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}

	return shared.ErrMaxRetriesExceeded
}

func (u *PostgresUoW) acquireLocks(ctx context.Context, tx pgx.Tx, keys []shared.LockKey) error {
	for _, key := range keys {
		if _, err := tx.Exec(ctx, advisoryLockSQL, string(key)); err != nil {
			return infra.ClassifyPgErr(u.logger, "failed to acquire lock "+string(key), err)
		}
	}
	return nil
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, shared.ErrTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(context.WithoutCancel(ctx)); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				u.logger.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, u.newTx(pgxTx)); err != nil {
		return err
	}

	if err := pgxTx.Commit(ctx); err != nil {
		return errs.Mark(err, shared.ErrTransactionCommit)
	}
	return nil
}

func shouldRetry(err error, attempt, maxRetries int) bool {
	return isRetryableError(err) && attempt < maxRetries
}

func calculateBackoff(attempt int, base time.Duration) time.Duration {
	waitTime := time.Duration(1<<attempt) * base
	jitter := cryptoRandInt63n(int64(waitTime / 5))
	return waitTime + time.Duration(jitter)
}

func cryptoRandInt63n(n int64) int64 {
	if n <= 0 {
		return 0
	}
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	uval := binary.BigEndian.Uint64(buf[:]) & 0x7FFFFFFFFFFFFFFF
	// #nosec G115 -- Intentionally safe conversion after masking
	return int64(uval) % n
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case infra.PgCodeSerializationFailure, infra.PgCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

func (u *PostgresUoW) newTx(dbtx repository.DBTX) *pgTx {
	return &pgTx{dbtx: dbtx, logger: u.logger}
}

type pgTx struct {
	dbtx   repository.DBTX
	logger *slog.Logger

	// Lazy-initialized repositories
	resourceRepo     shared.ResourceRepository
	reservationRepo  shared.ReservationRepository
	activityRepo     shared.ActivityRepository
	registrationRepo shared.RegistrationRepository
	notificationRepo shared.NotificationRepository
}

func (t *pgTx) Resources() shared.ResourceRepository {
	if t.resourceRepo == nil {
		t.resourceRepo = repository.NewResourceRepository(t.dbtx, t.logger)
	}
	return t.resourceRepo
}

func (t *pgTx) Reservations() shared.ReservationRepository {
	if t.reservationRepo == nil {
		t.reservationRepo = repository.NewReservationRepository(t.dbtx, t.logger)
	}
	return t.reservationRepo
}

func (t *pgTx) Activities() shared.ActivityRepository {
	if t.activityRepo == nil {
		t.activityRepo = repository.NewActivityRepository(t.dbtx, t.logger)
	}
	return t.activityRepo
}

func (t *pgTx) Registrations() shared.RegistrationRepository {
	if t.registrationRepo == nil {
		t.registrationRepo = repository.NewRegistrationRepository(t.dbtx, t.logger)
	}
	return t.registrationRepo
}

func (t *pgTx) Notifications() shared.NotificationRepository {
	if t.notificationRepo == nil {
		t.notificationRepo = repository.NewNotificationRepository(t.dbtx, t.logger)
	}
	return t.notificationRepo
}
