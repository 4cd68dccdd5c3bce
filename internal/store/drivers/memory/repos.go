package memory

import (
	"context"
	"strconv"
	"time"

	"github.com/yeoro/twogether/internal/store"
)

type sessionsRepo Store

func (r *sessionsRepo) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	(*Store)(r).set(blacklistKey(tokenID), "1", ttl)
	return nil
}

func (r *sessionsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	_, ok := (*Store)(r).get(blacklistKey(tokenID))
	return ok, nil
}

func (r *sessionsRepo) SetActiveRefresh(ctx context.Context, memberID int64, token string, ttl time.Duration) error {
	(*Store)(r).set(refreshKey(memberID), token, ttl)
	return nil
}

func (r *sessionsRepo) GetActiveRefresh(ctx context.Context, memberID int64) (string, error) {
	token, ok := (*Store)(r).get(refreshKey(memberID))
	if !ok {
		return "", store.ErrNotFound
	}
	return token, nil
}

func (r *sessionsRepo) ClearActiveRefresh(ctx context.Context, memberID int64) error {
	(*Store)(r).del(refreshKey(memberID))
	return nil
}

type otcRepo Store

func (r *otcRepo) Put(ctx context.Context, code string, memberID int64, ttl time.Duration) error {
	(*Store)(r).set(otcKey(code), formatID(memberID), ttl)
	return nil
}

func (r *otcRepo) Consume(ctx context.Context, code string) (int64, error) {
	val, ok := (*Store)(r).getDel(otcKey(code))
	if !ok {
		return 0, store.ErrNotFound
	}
	return strconv.ParseInt(val, 10, 64)
}

type pairingRepo Store

func (r *pairingRepo) CodeForOwner(ctx context.Context, memberID int64) (string, error) {
	code, ok := (*Store)(r).get(pairOwnerKey(memberID))
	if !ok {
		return "", store.ErrNotFound
	}
	return code, nil
}

func (r *pairingRepo) OwnerForCode(ctx context.Context, code string) (int64, error) {
	val, ok := (*Store)(r).get(pairCodeKey(code))
	if !ok {
		return 0, store.ErrNotFound
	}
	return strconv.ParseInt(val, 10, 64)
}

func (r *pairingRepo) PutOwnerCode(ctx context.Context, memberID int64, code string, ttl time.Duration) (bool, error) {
	return (*Store)(r).setNX(pairOwnerKey(memberID), code, ttl), nil
}

func (r *pairingRepo) PutCodeOwner(ctx context.Context, code string, memberID int64, ttl time.Duration) (bool, error) {
	return (*Store)(r).setNX(pairCodeKey(code), formatID(memberID), ttl), nil
}

func (r *pairingRepo) DeleteOwnerCode(ctx context.Context, memberID int64) error {
	(*Store)(r).del(pairOwnerKey(memberID))
	return nil
}

func (r *pairingRepo) Consume(ctx context.Context, code string) (int64, error) {
	val, ok := (*Store)(r).getDel(pairCodeKey(code))
	if !ok {
		return 0, store.ErrNotFound
	}
	memberID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, err
	}
	(*Store)(r).del(pairOwnerKey(memberID))
	return memberID, nil
}

func (r *pairingRepo) TryLock(ctx context.Context, memberID int64, ttl time.Duration) (bool, error) {
	return (*Store)(r).setNX(pairLockKey(memberID), "1", ttl), nil
}

func (r *pairingRepo) Unlock(ctx context.Context, memberID int64) error {
	(*Store)(r).del(pairLockKey(memberID))
	return nil
}

type statesRepo Store

func (r *statesRepo) Put(ctx context.Context, state, returnTo string, ttl time.Duration) error {
	(*Store)(r).set(stateKey(state), returnTo, ttl)
	return nil
}

func (r *statesRepo) Consume(ctx context.Context, state string) (string, error) {
	val, ok := (*Store)(r).getDel(stateKey(state))
	if !ok {
		return "", store.ErrNotFound
	}
	return val, nil
}
