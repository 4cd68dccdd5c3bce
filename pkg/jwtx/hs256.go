package jwtx

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrInvalidSig = errors.New("jwtx: invalid signature")
	ErrExpired    = errors.New("jwtx: token expired")
)

// MinSecretBytes is the minimum decoded secret length. HS256 wants at least
// 256 bits of key material.
const MinSecretBytes = 32

// Signer mints and verifies HS256 tokens with a single shared secret.
// It is stateless; both halves are pure functions over the secret material.
type Signer struct {
	secret []byte
	issuer string
}

// NewSigner builds a Signer from a hex-encoded secret. A malformed or short
// secret is a deployment error and fails construction, never a later call.
func NewSigner(secretHex, issuer string) (*Signer, error) {
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return nil, fmt.Errorf("jwtx: secret is not valid hex: %w", err)
	}
	if len(secret) < MinSecretBytes {
		return nil, fmt.Errorf("jwtx: secret too short: got %d bytes, want at least %d", len(secret), MinSecretBytes)
	}
	return &Signer{secret: secret, issuer: issuer}, nil
}

// Issuer returns the iss claim value this signer stamps into tokens.
func (s *Signer) Issuer() string { return s.issuer }

// Mint signs the claim set. It fails only on programmer error; business
// conditions never make minting fail.
func (s *Signer) Mint(claims Claims) (string, error) {
	claims.Issuer = s.issuer
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: signing failed: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a raw token. Attacker-controlled garbage comes
// back as ErrMalformed, a bad signature as ErrInvalidSig and a past expiry as
// ErrExpired; it never panics on malformed input.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		default:
			return Claims{}, ErrMalformed
		}
	}
	return claims, nil
}
