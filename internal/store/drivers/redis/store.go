// Package redis implements the store contracts on top of a Redis server.
// Redis supplies everything the pairing and session logic needs natively:
// per-key TTLs, SET NX for conditional writes and GETDEL for atomic
// read-and-delete.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/yeoro/twogether/internal/store"
)

// Key schema. TTLs are decided by the callers; the driver only owns the
// prefixes.
//
//	refresh:<memberID>            active refresh token
//	blacklist:<tokenID>           revocation marker
//	partner:code:<code>           code -> owner
//	partner:owner:<memberID>      owner -> code
//	lock:partner:code:<memberID>  advisory generation lock
//	otc:<code>                    one-time code -> member id
//	state:<state>                 OAuth return context
func refreshKey(memberID int64) string { return "refresh:" + strconv.FormatInt(memberID, 10) }
func blacklistKey(tokenID string) string { return "blacklist:" + tokenID }
func pairCodeKey(code string) string     { return "partner:code:" + code }
func pairOwnerKey(memberID int64) string {
	return "partner:owner:" + strconv.FormatInt(memberID, 10)
}
func pairLockKey(memberID int64) string {
	return "lock:partner:code:" + strconv.FormatInt(memberID, 10)
}
func otcKey(code string) string    { return "otc:" + code }
func stateKey(state string) string { return "state:" + state }

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Store implements store.Store against a single Redis server.
type Store struct {
	rdb *redis.Client

	sessions     *sessionsRepo
	oneTimeCodes *otcRepo
	pairingCodes *pairingRepo
	states       *statesRepo
}

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}
	return &Store{
		rdb:          rdb,
		sessions:     &sessionsRepo{rdb: rdb},
		oneTimeCodes: &otcRepo{rdb: rdb},
		pairingCodes: &pairingRepo{rdb: rdb},
		states:       &statesRepo{rdb: rdb},
	}, nil
}

func (s *Store) Sessions() store.Sessions         { return s.sessions }
func (s *Store) OneTimeCodes() store.OneTimeCodes { return s.oneTimeCodes }
func (s *Store) PairingCodes() store.PairingCodes { return s.pairingCodes }
func (s *Store) States() store.States             { return s.states }

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
