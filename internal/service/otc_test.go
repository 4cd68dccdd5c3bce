package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOTCExchange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	code, err := env.otc.Issue(ctx, m.ID)
	require.NoError(t, err)
	require.NotEmpty(t, code)

	pair, err := env.otc.Exchange(ctx, code)
	require.NoError(t, err)

	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, m.ID, claims.MemberID)
}

func TestOTCReplayFails(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	code, err := env.otc.Issue(ctx, m.ID)
	require.NoError(t, err)

	_, err = env.otc.Exchange(ctx, code)
	require.NoError(t, err)

	_, err = env.otc.Exchange(ctx, code)
	require.ErrorIs(t, err, ErrOtcExpiredOrConsumed)
}

func TestOTCUnknownAndExpired(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	m := env.addMember(t, "alice@example.com")

	_, err := env.otc.Exchange(ctx, "never-issued")
	require.ErrorIs(t, err, ErrOtcExpiredOrConsumed)

	short := &OTCService{Store: env.store, Sessions: env.sessions, TTL: 10 * time.Millisecond}
	code, err := short.Issue(ctx, m.ID)
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)

	_, err = short.Exchange(ctx, code)
	require.ErrorIs(t, err, ErrOtcExpiredOrConsumed)
}
