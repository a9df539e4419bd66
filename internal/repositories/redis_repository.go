package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ucmodeler/internal/errs"
	"ucmodeler/internal/models"
)

// RedisSessionRepository keeps session state in Redis. Expiry is left to the
// key TTL, refreshed on every save.
type RedisSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

var _ SessionRepository = (*RedisSessionRepository)(nil)

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func sessionKey(id uuid.UUID) string {
	return "session:" + id.String()
}

func (r *RedisSessionRepository) Get(ctx context.Context, id uuid.UUID) (*models.SessionState, error) {
	const op = "session.Get"

	raw, err := r.rdb.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errs.Newf(errs.NotFound, op, "session %s not found", id)
	}
	if err != nil {
		return nil, errs.E(errs.Internal, op, err)
	}

	var state models.SessionState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, errs.E(errs.Internal, op, fmt.Errorf("decoding session: %w", err))
	}

	return &state, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, state *models.SessionState) error {
	const op = "session.Save"

	state.LastSeen = time.Now()

	raw, err := json.Marshal(state)
	if err != nil {
		return errs.E(errs.Internal, op, err)
	}

	return errs.E(errs.Internal, op, r.rdb.Set(ctx, sessionKey(state.ID), raw, r.ttl).Err())
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return errs.E(errs.Internal, "session.Delete", r.rdb.Del(ctx, sessionKey(id)).Err())
}

func (r *RedisSessionRepository) Sweep(context.Context) (int, error) {
	return 0, nil
}
