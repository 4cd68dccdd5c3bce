package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/store"
	"github.com/yeoro/twogether/pkg/idx"
	"github.com/yeoro/twogether/pkg/jwtx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// SessionService mints, validates, refreshes and revokes the member's token
// pair. A member has at most one live refresh session: issuing a new pair
// displaces the old one, so the newest login wins on every device race.
type SessionService struct {
	Store      store.Store
	Directory  directory.Directory
	Signer     *jwtx.Signer
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Issue mints a fresh token pair for the member and records the refresh half
// as the member's sole active session. Partner claims are snapshotted at mint
// time; clients re-fetch /members/me when they need live pairing state.
func (s *SessionService) Issue(ctx context.Context, memberID int64) (*domain.TokenPair, error) {
	now := time.Now()

	m, err := s.Directory.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("load member %d: %w", memberID, err)
	}

	var partnerNickname string
	if m.Paired() {
		if partner, err := s.Directory.GetMember(ctx, m.PartnerID); err == nil {
			partnerNickname = partner.Nickname
		}
	}

	accessToken, err := s.Signer.Mint(jwtx.Claims{
		RegisteredClaims: registered(m.ID, now, s.AccessTTL),
		MemberID:         m.ID,
		Kind:             jwtx.KindAccess,
		Nickname:         m.Nickname,
		PartnerID:        m.PartnerID,
		PartnerNickname:  partnerNickname,
	})
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.Signer.Mint(jwtx.Claims{
		RegisteredClaims: registered(m.ID, now, s.RefreshTTL),
		MemberID:         m.ID,
		Kind:             jwtx.KindRefresh,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Store.Sessions().SetActiveRefresh(ctx, m.ID, refreshToken, s.RefreshTTL); err != nil {
		return nil, fmt.Errorf("record refresh session: %w", err)
	}

	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, nil
}

// ValidateAccess verifies an access token and checks it against the
// revocation blacklist. A store error comes back as-is: callers must treat it
// as "unknown", never as "valid".
func (s *SessionService) ValidateAccess(ctx context.Context, raw string) (jwtx.Claims, error) {
	claims, err := s.verify(raw, jwtx.KindAccess)
	if err != nil {
		return jwtx.Claims{}, err
	}

	revoked, err := s.Store.Sessions().IsRevoked(ctx, claims.TokenID())
	if err != nil {
		return jwtx.Claims{}, fmt.Errorf("revocation check: %w", err)
	}
	if revoked {
		return jwtx.Claims{}, ErrTokenRevoked
	}
	return claims, nil
}

// Refresh rotates the session: it verifies the refresh token, confirms it is
// the member's current one, and issues a fresh pair. A verified-but-displaced
// token reports ErrRefreshTokenStale, which tells the client another login
// took over the session.
func (s *SessionService) Refresh(ctx context.Context, raw string) (*domain.TokenPair, error) {
	claims, err := s.verify(raw, jwtx.KindRefresh)
	if err != nil {
		return nil, err
	}

	current, err := s.Store.Sessions().GetActiveRefresh(ctx, claims.MemberID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrRefreshTokenStale
		}
		return nil, fmt.Errorf("load refresh session: %w", err)
	}
	if current != raw {
		slogx.FromContext(ctx).Info("stale refresh token presented",
			"member_id", claims.MemberID)
		return nil, ErrRefreshTokenStale
	}

	return s.Issue(ctx, claims.MemberID)
}

// RevokeAccess blacklists the access token for its remaining lifetime. Once
// the token would have expired anyway the marker is useless, so it shares the
// token's deadline.
func (s *SessionService) RevokeAccess(ctx context.Context, claims jwtx.Claims) error {
	remaining := claims.Remaining(time.Now())
	if remaining <= 0 {
		return nil
	}
	return s.Store.Sessions().Revoke(ctx, claims.TokenID(), remaining)
}

// Logout ends the member's session: the current access token goes on the
// blacklist and the active refresh session is dropped, so neither half of the
// pair works afterwards.
func (s *SessionService) Logout(ctx context.Context, claims jwtx.Claims) error {
	if err := s.RevokeAccess(ctx, claims); err != nil {
		return fmt.Errorf("blacklist access token: %w", err)
	}
	if err := s.Store.Sessions().ClearActiveRefresh(ctx, claims.MemberID); err != nil {
		return fmt.Errorf("clear refresh session: %w", err)
	}
	return nil
}

// verify parses the raw token and maps signature-level failures onto the
// service error taxonomy. A token of the wrong kind is malformed from the
// caller's point of view, whatever its signature says.
func (s *SessionService) verify(raw string, kind string) (jwtx.Claims, error) {
	claims, err := s.Signer.Verify(raw)
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return jwtx.Claims{}, ErrTokenExpired
	case errors.Is(err, jwtx.ErrInvalidSig):
		return jwtx.Claims{}, ErrTokenSignatureInvalid
	case err != nil:
		return jwtx.Claims{}, ErrTokenMalformed
	}
	if claims.Kind != kind || claims.MemberID == 0 || claims.TokenID() == "" {
		return jwtx.Claims{}, ErrTokenMalformed
	}
	return claims, nil
}

func registered(memberID int64, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        idx.New(),
		Subject:   strconv.FormatInt(memberID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
