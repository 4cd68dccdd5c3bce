package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeoro/twogether/internal/store"
)

type statesRepo struct {
	rdb *redis.Client
}

func (r *statesRepo) Put(ctx context.Context, state, returnTo string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, stateKey(state), returnTo, ttl).Err(); err != nil {
		return fmt.Errorf("redis: put state: %w", err)
	}
	return nil
}

func (r *statesRepo) Consume(ctx context.Context, state string) (string, error) {
	val, err := r.rdb.GetDel(ctx, stateKey(state)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: consume state: %w", err)
	}
	return val, nil
}
