// Package idempotency stores Idempotency-Key claims outside the main
// database so a replayed request never needs a write transaction.
package idempotency

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"club-scheduler/internal/pkg/errs"
	"club-scheduler/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "idempotency:"

// claimAttempts bounds the SETNX/GET loop when a key expires between the two.
const claimAttempts = 3

type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

var _ shared.IdempotencyStore = (*RedisStore)(nil)

func redisKey(scope string, key uuid.UUID) string {
	return keyPrefix + scope + ":" + key.String()
}

func (s *RedisStore) Claim(ctx context.Context, scope string, key uuid.UUID, requestHash string) (*shared.IdempotencyRecord, bool, error) {
	rec := &shared.IdempotencyRecord{
		Key:         key,
		Scope:       scope,
		Status:      shared.IdempotencyStatusProcessing,
		RequestHash: requestHash,
	}
	body, err := json.Marshal(rec)
	if err != nil {
		return nil, false, errs.Wrap(err, "failed to encode idempotency record")
	}

	k := redisKey(scope, key)
	for range claimAttempts {
		ok, err := s.client.SetNX(ctx, k, string(body), s.ttl).Result()
		if err != nil {
			return nil, false, errs.Wrap(err, "failed to claim idempotency key")
		}
		if ok {
			return rec, true, nil
		}

		existing, err := s.get(ctx, k)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			return existing, false, nil
		}
		s.logger.DebugContext(ctx, "idempotency key expired during claim, retrying", "key", key)
	}
	return nil, false, errs.Newf("could not claim idempotency key %s", key)
}

func (s *RedisStore) Complete(ctx context.Context, scope string, key uuid.UUID, resultID uuid.UUID) error {
	k := redisKey(scope, key)
	rec, err := s.get(ctx, k)
	if err != nil {
		return err
	}
	if rec == nil {
		return errs.NotFound("idempotency key is not claimed")
	}
	rec.Status = shared.IdempotencyStatusCompleted
	rec.ResultID = &resultID

	body, err := json.Marshal(rec)
	if err != nil {
		return errs.Wrap(err, "failed to encode idempotency record")
	}
	if err := s.client.Set(ctx, k, string(body), s.ttl).Err(); err != nil {
		return errs.Wrap(err, "failed to complete idempotency key")
	}
	return nil
}

func (s *RedisStore) Release(ctx context.Context, scope string, key uuid.UUID) error {
	if err := s.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		return errs.Wrap(err, "failed to release idempotency key")
	}
	return nil
}

// get returns nil without error when the key does not exist.
func (s *RedisStore) get(ctx context.Context, k string) (*shared.IdempotencyRecord, error) {
	raw, err := s.client.Get(ctx, k).Result()
	if errs.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(err, "failed to read idempotency key")
	}
	var rec shared.IdempotencyRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, errs.Wrap(err, "failed to decode idempotency record")
	}
	return &rec, nil
}
