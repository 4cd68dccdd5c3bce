package service

import (
	"context"
	"errors"
	"time"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/oauth"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/pkg/cryptox"
	"github.com/yeoro/twogether/pkg/slogx"
)

// DefaultStateTTL bounds the whole provider round trip.
const DefaultStateTTL = 300 * time.Second

// OAuthService runs the social-login flow: state out, profile in, one-time
// code back to the browser.
type OAuthService struct {
	Store     store.Store
	Directory directory.Directory
	OTC       *OTCService
	Provider  oauth.Provider
	StateTTL  time.Duration
}

// Start mints an anti-CSRF state bound to returnTo and builds the provider's
// authorize URL.
func (s *OAuthService) Start(ctx context.Context, returnTo string) (string, error) {
	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", err
	}
	if err := s.Store.States().Put(ctx, state, returnTo, s.stateTTL()); err != nil {
		return "", err
	}
	return s.Provider.AuthorizeURL(state), nil
}

// Callback finishes the flow: it consumes the state, trades the provider code
// for a profile, finds or creates the member, and returns a one-time code for
// the client to exchange plus the returnTo captured at Start. An unknown or
// replayed state fails with ErrStateInvalid before any provider call is made.
func (s *OAuthService) Callback(ctx context.Context, state, code string) (otcCode, returnTo string, err error) {
	returnTo, err = s.Store.States().Consume(ctx, state)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", ErrStateInvalid
	}
	if err != nil {
		return "", "", err
	}

	profile, err := s.Provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", "", err
	}

	// OAuth members get a throwaway hash so the password column is never
	// empty; password login stays unavailable for them either way.
	placeholder, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", "", err
	}
	hash, err := cryptox.HashPassword(placeholder)
	if err != nil {
		return "", "", err
	}

	m, err := s.Directory.FindOrCreateByOAuth(ctx, s.Provider.Platform(), profile.ProviderID, domain.Member{
		Email:        profile.Email,
		Name:         profile.Name,
		PasswordHash: hash,
	})
	if err != nil {
		return "", "", err
	}

	otcCode, err = s.OTC.Issue(ctx, m.ID)
	if err != nil {
		return "", "", err
	}

	slogx.FromContext(ctx).Info("oauth login completed",
		"platform", s.Provider.Platform(), "member_id", m.ID)
	return otcCode, returnTo, nil
}

func (s *OAuthService) stateTTL() time.Duration {
	if s.StateTTL > 0 {
		return s.StateTTL
	}
	return DefaultStateTTL
}
