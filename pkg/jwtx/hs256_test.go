package jwtx

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	secretHex      = "6d79207465737420736563726574206d79207465737420736563726574202121"
	otherSecretHex = "6f74686572207365637265742021216f74686572207365637265742021212121"
)

func newClaims(memberID int64, kind string, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-test",
			Subject:   strconv.FormatInt(memberID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		MemberID: memberID,
		Kind:     kind,
	}
}

func TestNewSignerValidation(t *testing.T) {
	t.Parallel()

	t.Run("rejects non-hex secret", func(t *testing.T) {
		_, err := NewSigner("zz-not-hex", "iss")
		require.Error(t, err)
	})

	t.Run("rejects short secret", func(t *testing.T) {
		_, err := NewSigner("deadbeef", "iss")
		require.Error(t, err)
	})

	t.Run("accepts 256-bit secret", func(t *testing.T) {
		s, err := NewSigner(secretHex, "iss")
		require.NoError(t, err)
		require.Equal(t, "iss", s.Issuer())
	})
}

func TestMintVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(secretHex, "twogether")
	require.NoError(t, err)

	raw, err := signer.Mint(newClaims(42, KindAccess, time.Minute))
	require.NoError(t, err)
	require.Equal(t, 3, len(strings.Split(raw, ".")))

	claims, err := signer.Verify(raw)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.MemberID)
	require.Equal(t, KindAccess, claims.Kind)
	require.Equal(t, "twogether", claims.Issuer)
	require.Equal(t, "jti-test", claims.TokenID())
}

func TestVerifyRejections(t *testing.T) {
	t.Parallel()

	signer, err := NewSigner(secretHex, "twogether")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		raw, err := signer.Mint(newClaims(1, KindAccess, -time.Minute))
		require.NoError(t, err)
		_, err = signer.Verify(raw)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong key", func(t *testing.T) {
		forger, err := NewSigner(otherSecretHex, "twogether")
		require.NoError(t, err)
		raw, err := forger.Mint(newClaims(1, KindAccess, time.Minute))
		require.NoError(t, err)
		_, err = signer.Verify(raw)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other, err := NewSigner(secretHex, "someone-else")
		require.NoError(t, err)
		raw, err := other.Mint(newClaims(1, KindAccess, time.Minute))
		require.NoError(t, err)
		_, err = signer.Verify(raw)
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, raw := range []string{"", "garbage", "a.b.c", "e30.e30."} {
			_, err := signer.Verify(raw)
			require.ErrorIs(t, err, ErrMalformed, "input %q", raw)
		}
	})

	t.Run("alg none rejected", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, newClaims(1, KindAccess, time.Minute))
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = signer.Verify(raw)
		require.Error(t, err)
	})

	t.Run("missing expiry rejected", func(t *testing.T) {
		claims := newClaims(1, KindAccess, time.Minute)
		claims.ExpiresAt = nil
		raw, err := signer.Mint(claims)
		require.NoError(t, err)
		_, err = signer.Verify(raw)
		require.ErrorIs(t, err, ErrMalformed)
	})
}

func TestClaimsRemaining(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}}

	require.Equal(t, time.Minute, claims.Remaining(now).Round(time.Second))
	require.Equal(t, time.Duration(0), claims.Remaining(now.Add(2*time.Minute)))
	require.Equal(t, time.Duration(0), Claims{}.Remaining(now))
}
