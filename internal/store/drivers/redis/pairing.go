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

type pairingRepo struct {
	rdb *redis.Client
}

func (r *pairingRepo) CodeForOwner(ctx context.Context, memberID int64) (string, error) {
	code, err := r.rdb.Get(ctx, pairOwnerKey(memberID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", store.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("redis: code for owner: %w", err)
	}
	return code, nil
}

func (r *pairingRepo) OwnerForCode(ctx context.Context, code string) (int64, error) {
	val, err := r.rdb.Get(ctx, pairCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: owner for code: %w", err)
	}
	return parseMemberID(val)
}

func (r *pairingRepo) PutOwnerCode(ctx context.Context, memberID int64, code string, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, pairOwnerKey(memberID), code, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: put owner code: %w", err)
	}
	return ok, nil
}

func (r *pairingRepo) PutCodeOwner(ctx context.Context, code string, memberID int64, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, pairCodeKey(code), strconv.FormatInt(memberID, 10), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: put code owner: %w", err)
	}
	return ok, nil
}

func (r *pairingRepo) DeleteOwnerCode(ctx context.Context, memberID int64) error {
	if err := r.rdb.Del(ctx, pairOwnerKey(memberID)).Err(); err != nil {
		return fmt.Errorf("redis: delete owner code: %w", err)
	}
	return nil
}

// Consume takes the code->owner entry with GETDEL, which settles any race
// with a concurrent consumer or with expiry, then clears the mirror entry.
func (r *pairingRepo) Consume(ctx context.Context, code string) (int64, error) {
	val, err := r.rdb.GetDel(ctx, pairCodeKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("redis: consume pairing code: %w", err)
	}
	memberID, err := parseMemberID(val)
	if err != nil {
		return 0, err
	}
	if err := r.rdb.Del(ctx, pairOwnerKey(memberID)).Err(); err != nil {
		// The code half is already gone, so single use still holds; the
		// orphaned mirror entry expires on its own TTL.
		return 0, fmt.Errorf("redis: clear owner mirror: %w", err)
	}
	return memberID, nil
}

func (r *pairingRepo) TryLock(ctx context.Context, memberID int64, ttl time.Duration) (bool, error) {
	ok, err := r.rdb.SetNX(ctx, pairLockKey(memberID), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis: acquire pairing lock: %w", err)
	}
	return ok, nil
}

func (r *pairingRepo) Unlock(ctx context.Context, memberID int64) error {
	if err := r.rdb.Del(ctx, pairLockKey(memberID)).Err(); err != nil {
		return fmt.Errorf("redis: release pairing lock: %w", err)
	}
	return nil
}

func parseMemberID(val string) (int64, error) {
	memberID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: corrupt member id %q: %w", val, err)
	}
	return memberID, nil
}
