package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"

	"club-scheduler/internal/domain/reservation"
	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
)

type Actor = shared.Actor

// idempotencyGuard wraps one command execution with an Idempotency-Key
// claim. A zero key disables it.
type idempotencyGuard struct {
	store  shared.IdempotencyStore
	logger *slog.Logger
	scope  string
	key    uuid.UUID
	hash   string
	done   bool
}

func newIdempotencyGuard(store shared.IdempotencyStore, logger *slog.Logger, memberID uuid.UUID, endpoint string, key uuid.UUID, request any) *idempotencyGuard {
	return &idempotencyGuard{
		store:  store,
		logger: logger,
		scope:  memberID.String() + ":" + endpoint,
		key:    key,
		hash:   calculateRequestHash(request),
	}
}

func (g *idempotencyGuard) enabled() bool {
	return g.store != nil && g.key != uuid.Nil
}

// begin claims the key. A non-nil id means the request already completed
// and its result should be replayed.
func (g *idempotencyGuard) begin(ctx context.Context) (*uuid.UUID, error) {
	if !g.enabled() {
		return nil, nil
	}
	rec, claimed, err := g.store.Claim(ctx, g.scope, g.key, g.hash)
	if err != nil {
		return nil, errs.Wrap(err, "idempotency check failed")
	}
	if claimed {
		return nil, nil
	}

	if rec.RequestHash != g.hash {
		return nil, errs.Mark(errs.New("idempotency key reused with a different request"), errs.ErrIdempotencyMismatch)
	}
	switch rec.Status {
	case shared.IdempotencyStatusCompleted:
		if rec.ResultID == nil {
			return nil, errs.New("completed request missing result id")
		}
		g.done = true
		return rec.ResultID, nil
	case shared.IdempotencyStatusProcessing:
		return nil, errs.Mark(errs.New("request with this idempotency key is in progress"), errs.ErrIdempotencyInProgress)
	default:
		return nil, errs.Newf("invalid idempotency key status %q", rec.Status)
	}
}

func (g *idempotencyGuard) complete(ctx context.Context, resultID uuid.UUID) error {
	if !g.enabled() {
		return nil
	}
	if err := g.store.Complete(ctx, g.scope, g.key, resultID); err != nil {
		return errs.Wrap(err, "failed to complete idempotency key")
	}
	g.done = true
	return nil
}

// release frees the claim unless the request completed, so a failed or
// rejected request can be retried with the same key.
func (g *idempotencyGuard) release(ctx context.Context) {
	if !g.enabled() || g.done {
		return
	}
	if err := g.store.Release(context.WithoutCancel(ctx), g.scope, g.key); err != nil {
		g.logger.WarnContext(ctx, "failed to release idempotency key", "key", g.key, "error", err.Error())
	}
}

func calculateRequestHash(req any) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// transitionReason turns a rejected status change into a user-facing reason.
func transitionReason(err error) (string, bool) {
	if !errs.Is(err, reservation.ErrInvalidTransition) {
		return "", false
	}
	return strings.TrimPrefix(err.Error(), reservation.ErrInvalidTransition.Error()+": "), true
}
