package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeoro/twogether/internal/store"
)

type sessionsRepo struct {
	rdb *redis.Client
}

func (r *sessionsRepo) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, blacklistKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis: revoke: %w", err)
	}
	return nil
}

func (r *sessionsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, blacklistKey(tokenID)).Result()
	if err != nil {
		// Fail closed: the caller must treat this as a hard failure, not as
		// "not revoked".
		return false, fmt.Errorf("redis: revocation lookup: %w", err)
	}
	return n > 0, nil
}

func (r *sessionsRepo) SetActiveRefresh(ctx context.Context, memberID int64, token string, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, refreshKey(memberID), token, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set active refresh: %w", err)
	}
	return nil
}

func (r *sessionsRepo) GetActiveRefresh(ctx context.Context, memberID int64) (string, error) {
	token, err := r.rdb.Get(ctx, refreshKey(memberID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: get active refresh: %w", err)
	}
	return token, nil
}

func (r *sessionsRepo) ClearActiveRefresh(ctx context.Context, memberID int64) error {
	if err := r.rdb.Del(ctx, refreshKey(memberID)).Err(); err != nil {
		return fmt.Errorf("redis: clear active refresh: %w", err)
	}
	return nil
}
