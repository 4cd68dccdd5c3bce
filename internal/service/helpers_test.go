package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/store/drivers/memory"
	"github.com/yeoro/twogether/pkg/jwtx"
)

const (
	testSecretHex  = "6d79207465737420736563726574206d79207465737420736563726574202121"
	otherSecretHex = "6f74686572207365637265742021216f74686572207365637265742021212121"
	testIssuer     = "twogether-test"
)

type testEnv struct {
	store    *memory.Store
	dir      *directory.MemoryDirectory
	sessions *SessionService
	pairing  *PairingService
	otc      *OTCService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	signer, err := jwtx.NewSigner(testSecretHex, testIssuer)
	require.NoError(t, err)

	st := memory.NewStore()
	dir := directory.NewMemoryDirectory()

	sessions := &SessionService{
		Store:      st,
		Directory:  dir,
		Signer:     signer,
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}

	return &testEnv{
		store:    st,
		dir:      dir,
		sessions: sessions,
		pairing:  &PairingService{Store: st, Directory: dir},
		otc:      &OTCService{Store: st, Sessions: sessions},
	}
}

func (e *testEnv) addMember(t *testing.T, email string) domain.Member {
	t.Helper()
	m, err := e.dir.CreateMember(context.Background(), domain.Member{
		Email:    email,
		Name:     strings.SplitN(email, "@", 2)[0],
		Platform: domain.PlatformLocal,
	})
	require.NoError(t, err)
	return m
}

// issueExpiredAccess mints an access token that is already past its deadline,
// including the verifier's leeway.
func issueExpiredAccess(t *testing.T, e *testEnv, memberID int64) string {
	t.Helper()
	svc := &SessionService{
		Store:      e.store,
		Directory:  e.dir,
		Signer:     e.sessions.Signer,
		AccessTTL:  -time.Minute,
		RefreshTTL: time.Minute,
	}
	pair, err := svc.Issue(context.Background(), memberID)
	require.NoError(t, err)
	return pair.AccessToken
}
