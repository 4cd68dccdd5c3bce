// Package memory is an in-process implementation of the store contracts with
// the same atomicity semantics as the Redis driver: conditional writes and
// read-and-delete happen under one lock, and expired entries are treated as
// absent on every observation. It backs unit tests and dev mode.
package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/yeoro/twogether/internal/store"
)

type entry struct {
	value     string
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Store implements store.Store over a mutex-guarded map.
type Store struct {
	mu   sync.Mutex
	data map[string]entry
}

func NewStore() *Store {
	return &Store{data: make(map[string]entry)}
}

func (s *Store) Sessions() store.Sessions         { return (*sessionsRepo)(s) }
func (s *Store) OneTimeCodes() store.OneTimeCodes { return (*otcRepo)(s) }
func (s *Store) PairingCodes() store.PairingCodes { return (*pairingRepo)(s) }
func (s *Store) States() store.States             { return (*statesRepo)(s) }

func (s *Store) Ping(ctx context.Context) error { return nil }
func (s *Store) Close() error                   { return nil }

/* primitive operations, all under the lock */

func (s *Store) set(key, value string, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = entry{value: value, expiresAt: expiry(ttl)}
}

func (s *Store) get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lookup(key)
}

func (s *Store) setNX(key, value string, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lookup(key); ok {
		return false
	}
	s.data[key] = entry{value: value, expiresAt: expiry(ttl)}
	return true
}

func (s *Store) getDel(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	val, ok := s.lookup(key)
	if ok {
		delete(s.data, key)
	}
	return val, ok
}

func (s *Store) del(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// lookup returns the live value for key, reaping it if expired.
// Callers must hold the lock.
func (s *Store) lookup(key string) (string, bool) {
	e, ok := s.data[key]
	if !ok {
		return "", false
	}
	if e.expired(time.Now()) {
		delete(s.data, key)
		return "", false
	}
	return e.value, true
}

func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

/* key schema mirrors the redis driver */

func refreshKey(memberID int64) string    { return "refresh:" + formatID(memberID) }
func blacklistKey(tokenID string) string  { return "blacklist:" + tokenID }
func pairCodeKey(code string) string      { return "partner:code:" + code }
func pairOwnerKey(memberID int64) string  { return "partner:owner:" + formatID(memberID) }
func pairLockKey(memberID int64) string   { return "lock:partner:code:" + formatID(memberID) }
func otcKey(code string) string           { return "otc:" + code }
func stateKey(state string) string        { return "state:" + state }
func formatID(memberID int64) string      { return strconv.FormatInt(memberID, 10) }
