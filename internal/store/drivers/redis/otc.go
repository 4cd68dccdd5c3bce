package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yeoro/twogether/internal/store"
)

type otcRepo struct {
	rdb *redis.Client
}

func (r *otcRepo) Put(ctx context.Context, code string, memberID int64, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, otcKey(code), strconv.FormatInt(memberID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis: put otc: %w", err)
	}
	return nil
}

// Consume uses GETDEL so the read and the delete are one observation: of two
// racing consumers exactly one gets the value.
func (r *otcRepo) Consume(ctx context.Context, code string) (int64, error) {
	val, err := r.rdb.GetDel(ctx, otcKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: consume otc: %w", err)
	}
	memberID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: corrupt otc payload %q: %w", val, err)
	}
	return memberID, nil
}
