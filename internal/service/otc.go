package service

import (
	"context"
	"errors"
	"time"

	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/pkg/cryptox"
)

// DefaultOTCTTL is the one-time code's window. The code only has to survive
// one browser redirect, so it is deliberately tight.
const DefaultOTCTTL = 60 * time.Second

// OTCService bridges the OAuth redirect back to the client: the callback
// hands the browser a short-lived one-time code instead of tokens, and the
// client trades it for a token pair over a direct call.
type OTCService struct {
	Store    store.Store
	Sessions *SessionService
	TTL      time.Duration
}

// Issue mints a one-time code bound to the member.
func (s *OTCService) Issue(ctx context.Context, memberID int64) (string, error) {
	code, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}
	if err := s.Store.OneTimeCodes().Put(ctx, code, memberID, s.ttl()); err != nil {
		return "", err
	}
	return code, nil
}

// Exchange consumes the code and issues a token pair. Expired, unknown and
// already-consumed codes are indistinguishable on purpose: a replayed code
// tells the attacker nothing about whether it ever existed.
func (s *OTCService) Exchange(ctx context.Context, code string) (*domain.TokenPair, error) {
	memberID, err := s.Store.OneTimeCodes().Consume(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOtcExpiredOrConsumed
	}
	if err != nil {
		return nil, err
	}
	return s.Sessions.Issue(ctx, memberID)
}

func (s *OTCService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultOTCTTL
}
