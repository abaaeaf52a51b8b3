package shared

import (
	"slices"

	"club-scheduler/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrTransactionBegin    = errs.New("failed to begin transaction")
	ErrTransactionCommit   = errs.New("failed to commit transaction")
	ErrTransactionRollback = errs.New("failed to rollback transaction")
	ErrMaxRetriesExceeded  = errs.New("transaction failed after max retries")
)

// LockKey names the aggregate a write transaction serializes on.
type LockKey string

func ResourceLock(id uuid.UUID) LockKey { return LockKey("resource:" + id.String()) }
func ActivityLock(id uuid.UUID) LockKey { return LockKey("activity:" + id.String()) }
func SeriesLock(id uuid.UUID) LockKey   { return LockKey("series:" + id.String()) }

// NormalizeLockKeys sorts and de-duplicates keys. Every implementation
// acquires locks in this order so two writers can never deadlock on them.
func NormalizeLockKeys(keys []LockKey) []LockKey {
	out := slices.Clone(keys)
	slices.Sort(out)
	return slices.Compact(out)
}
