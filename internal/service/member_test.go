package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
)

func newMemberService(env *testEnv) *MemberService {
	return &MemberService{Directory: env.dir, Sessions: env.sessions}
}

func TestSignupAndLogin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	members := newMemberService(env)

	m, err := members.Signup(ctx, "alice@example.com", "alice", "hunter2hunter2")
	require.NoError(t, err)
	require.NotZero(t, m.ID)
	require.NotEqual(t, "hunter2hunter2", m.PasswordHash)

	pair, err := members.Login(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)

	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, m.ID, claims.MemberID)
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	members := newMemberService(env)

	_, err := members.Signup(ctx, "alice@example.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	_, err = members.Signup(ctx, "alice@example.com", "imposter", "password123")
	require.ErrorIs(t, err, directory.ErrEmailTaken)
}

func TestLoginRejections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	members := newMemberService(env)

	_, err := members.Signup(ctx, "alice@example.com", "alice", "hunter2hunter2")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := members.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, err := members.Login(ctx, "nobody@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("oauth member cannot password login", func(t *testing.T) {
		_, err := env.dir.CreateMember(ctx, domain.Member{
			Email:        "kakao@example.com",
			Platform:     domain.PlatformKakao,
			PasswordHash: "placeholder",
		})
		require.NoError(t, err)

		_, err = members.Login(ctx, "kakao@example.com", "anything")
		require.ErrorIs(t, err, ErrPasswordLoginUnavailable)
	})
}

func TestChangePasswordRevokesSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	env := newTestEnv(t)
	members := newMemberService(env)

	_, err := members.Signup(ctx, "alice@example.com", "alice", "oldpassword1")
	require.NoError(t, err)

	pair, err := members.Login(ctx, "alice@example.com", "oldpassword1")
	require.NoError(t, err)
	claims, err := env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.NoError(t, err)

	t.Run("wrong current password rejected", func(t *testing.T) {
		err := members.ChangePassword(ctx, claims, "nope", "newpassword1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("same password rejected", func(t *testing.T) {
		err := members.ChangePassword(ctx, claims, "oldpassword1", "oldpassword1")
		require.ErrorIs(t, err, ErrPasswordUnchanged)
	})

	require.NoError(t, members.ChangePassword(ctx, claims, "oldpassword1", "newpassword1"))

	// Both halves of the old session are dead.
	_, err = env.sessions.ValidateAccess(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrTokenRevoked)
	_, err = env.sessions.Refresh(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrRefreshTokenStale)

	// Old credentials are gone, new ones work.
	_, err = members.Login(ctx, "alice@example.com", "oldpassword1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = members.Login(ctx, "alice@example.com", "newpassword1")
	require.NoError(t, err)
}
