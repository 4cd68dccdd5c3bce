package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yeoro/twogether/internal/store"
)

func TestSessionsRevocation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := NewStore().Sessions()

	t.Run("unknown token id is not revoked", func(t *testing.T) {
		revoked, err := sessions.IsRevoked(ctx, "jti-unknown")
		require.NoError(t, err)
		require.False(t, revoked)
	})

	t.Run("revoked id stays revoked", func(t *testing.T) {
		require.NoError(t, sessions.Revoke(ctx, "jti-1", time.Minute))
		revoked, err := sessions.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)

		// Re-revoking is idempotent.
		require.NoError(t, sessions.Revoke(ctx, "jti-1", time.Minute))
		revoked, err = sessions.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		require.True(t, revoked)
	})

	t.Run("expired marker is treated as absent", func(t *testing.T) {
		require.NoError(t, sessions.Revoke(ctx, "jti-short", 10*time.Millisecond))
		time.Sleep(30 * time.Millisecond)
		revoked, err := sessions.IsRevoked(ctx, "jti-short")
		require.NoError(t, err)
		require.False(t, revoked)
	})
}

func TestSessionsActiveRefresh(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sessions := NewStore().Sessions()

	_, err := sessions.GetActiveRefresh(ctx, 7)
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, sessions.SetActiveRefresh(ctx, 7, "token-a", time.Minute))
	token, err := sessions.GetActiveRefresh(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "token-a", token)

	// Overwrite replaces the previous session.
	require.NoError(t, sessions.SetActiveRefresh(ctx, 7, "token-b", time.Minute))
	token, err = sessions.GetActiveRefresh(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, "token-b", token)

	require.NoError(t, sessions.ClearActiveRefresh(ctx, 7))
	_, err = sessions.GetActiveRefresh(ctx, 7)
	require.ErrorIs(t, err, store.ErrNotFound)

	// Clearing an absent session is fine.
	require.NoError(t, sessions.ClearActiveRefresh(ctx, 7))
}

func TestOneTimeCodesConsumeOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	otc := NewStore().OneTimeCodes()

	require.NoError(t, otc.Put(ctx, "code-1", 42, time.Minute))

	memberID, err := otc.Consume(ctx, "code-1")
	require.NoError(t, err)
	require.Equal(t, int64(42), memberID)

	_, err = otc.Consume(ctx, "code-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestOneTimeCodesConcurrentConsume(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	otc := NewStore().OneTimeCodes()
	require.NoError(t, otc.Put(ctx, "raced", 99, time.Minute))

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan int64, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if memberID, err := otc.Consume(ctx, "raced"); err == nil {
				wins <- memberID
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []int64
	for id := range wins {
		winners = append(winners, id)
	}
	require.Len(t, winners, 1)
	require.Equal(t, int64(99), winners[0])
}

func TestPairingCodesConditionalWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pairing := NewStore().PairingCodes()

	ok, err := pairing.PutOwnerCode(ctx, 1, "AAAAAA", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Second write for the same owner loses.
	ok, err = pairing.PutOwnerCode(ctx, 1, "BBBBBB", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = pairing.PutCodeOwner(ctx, "AAAAAA", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// The code is claimed; a different owner cannot take it.
	ok, err = pairing.PutCodeOwner(ctx, "AAAAAA", 2, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	code, err := pairing.CodeForOwner(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, "AAAAAA", code)

	owner, err := pairing.OwnerForCode(ctx, "AAAAAA")
	require.NoError(t, err)
	require.Equal(t, int64(1), owner)
}

func TestPairingCodesConsumeClearsBothDirections(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pairing := NewStore().PairingCodes()

	ok, err := pairing.PutOwnerCode(ctx, 5, "CODE55", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = pairing.PutCodeOwner(ctx, "CODE55", 5, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	owner, err := pairing.Consume(ctx, "CODE55")
	require.NoError(t, err)
	require.Equal(t, int64(5), owner)

	_, err = pairing.OwnerForCode(ctx, "CODE55")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = pairing.CodeForOwner(ctx, 5)
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = pairing.Consume(ctx, "CODE55")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPairingCodesRollback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pairing := NewStore().PairingCodes()

	ok, err := pairing.PutOwnerCode(ctx, 9, "DEAD00", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, pairing.DeleteOwnerCode(ctx, 9))

	_, err = pairing.CodeForOwner(ctx, 9)
	require.ErrorIs(t, err, store.ErrNotFound)

	// The owner slot is free again after the rollback.
	ok, err = pairing.PutOwnerCode(ctx, 9, "FRESH1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestPairingCodesAdvisoryLock(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pairing := NewStore().PairingCodes()

	ok, err := pairing.TryLock(ctx, 3, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = pairing.TryLock(ctx, 3, time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, pairing.Unlock(ctx, 3))

	ok, err = pairing.TryLock(ctx, 3, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	// Unlocking a never-held lock is not an error.
	require.NoError(t, pairing.Unlock(ctx, 12345))
}

func TestPairingCodesExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pairing := NewStore().PairingCodes()

	ok, err := pairing.PutCodeOwner(ctx, "EXPIRE", 8, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)

	_, err = pairing.OwnerForCode(ctx, "EXPIRE")
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = pairing.Consume(ctx, "EXPIRE")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestStatesConsumeOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	states := NewStore().States()

	require.NoError(t, states.Put(ctx, "st-1", "/home", time.Minute))

	returnTo, err := states.Consume(ctx, "st-1")
	require.NoError(t, err)
	require.Equal(t, "/home", returnTo)

	_, err = states.Consume(ctx, "st-1")
	require.ErrorIs(t, err, store.ErrNotFound)
}
