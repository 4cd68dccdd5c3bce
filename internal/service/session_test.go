package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeoro/twogether/pkg/jwtx"
)

func TestIssueAndValidateAccess(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	pair, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	require.Equal(t, "Bearer", pair.TokenType)
	require.Equal(t, env.sessions.AccessTTL, pair.ExpiresIn)

	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, m.ID, claims.MemberID)
	require.Equal(t, jwtx.KindAccess, claims.Kind)
	require.NotEmpty(t, claims.TokenID())
}

func TestAccessClaimsCarryPartnerSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	a := env.addMember(t, "a@example.com")
	b := env.addMember(t, "b@example.com")

	require.NoError(t, env.dir.SetPartners(ctx, a.ID, b.ID))
	require.NoError(t, env.dir.SetNickname(ctx, a.ID, "honey"))
	require.NoError(t, env.dir.SetNickname(ctx, b.ID, "bear"))

	pair, err := env.sessions.Issue(ctx, a.ID)
	require.NoError(t, err)

	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, b.ID, claims.PartnerID)
	require.Equal(t, "honey", claims.Nickname)
	require.Equal(t, "bear", claims.PartnerNickname)
}

func TestValidateAccessRejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	pair, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := env.sessions.ValidateAccess(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := env.sessions.ValidateAccess(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrTokenMalformed)
	})

	t.Run("foreign signature rejected", func(t *testing.T) {
		forger, err := jwtx.NewSigner(otherSecretHex, testIssuer)
		require.NoError(t, err)
		foreign := &SessionService{
			Store:      env.store,
			Directory:  env.dir,
			Signer:     forger,
			AccessTTL:  env.sessions.AccessTTL,
			RefreshTTL: env.sessions.RefreshTTL,
		}
		forged, err := foreign.Issue(ctx, m.ID)
		require.NoError(t, err)

		_, err = env.sessions.ValidateAccess(ctx, forged.AccessToken)
		require.ErrorIs(t, err, ErrTokenSignatureInvalid)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		expired := issueExpiredAccess(t, env, m.ID)
		_, err := env.sessions.ValidateAccess(ctx, expired)
		require.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	first, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)

	second, err := env.sessions.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// The rotated-away token verifies but is no longer the live session.
	_, err = env.sessions.Refresh(ctx, first.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenStale)

	// The new token still works.
	_, err = env.sessions.Refresh(ctx, second.RefreshToken)
	require.NoError(t, err)
}

func TestNewLoginDisplacesOldSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	phone, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)
	tablet, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)

	_, err = env.sessions.Refresh(ctx, phone.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenStale)

	_, err = env.sessions.Refresh(ctx, tablet.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	pair, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)

	_, err = env.sessions.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestLogoutKillsBothTokens(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	pair, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)

	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, claims))

	_, err = env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)

	_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenStale)
}

func TestLogoutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	pair, err := env.sessions.Issue(ctx, m.ID)
	require.NoError(t, err)
	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.sessions.Logout(ctx, claims))
	require.NoError(t, env.sessions.Logout(ctx, claims))
}
