package jwtx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token kinds carried in the "typ" claim. A refresh token presented where an
// access token is expected (or vice versa) is rejected as malformed.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Default token TTLs. Access tokens are short-lived; the refresh token is the
// member's sole active session and lives for days.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims is the claim set minted into every token. The partner fields are
// informational only; anything security-relevant is re-validated against the
// store of record on use.
type Claims struct {
	jwt.RegisteredClaims

	// MemberID duplicates the subject as a number for client convenience.
	MemberID int64 `json:"memberId"`

	// Kind is "access" or "refresh".
	Kind string `json:"typ"`

	// Nickname is the pet name the member's partner gave them, if any.
	Nickname string `json:"nickname,omitempty"`

	// PartnerID is the paired member's id, 0 when unpaired.
	PartnerID int64 `json:"partnerId,omitempty"`

	// PartnerNickname mirrors Nickname for the paired member.
	PartnerNickname string `json:"partnerNickname,omitempty"`
}

// TokenID returns the jti claim.
func (c Claims) TokenID() string { return c.ID }

// Remaining returns the token's remaining lifetime at now, never negative.
func (c Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	if d := c.ExpiresAt.Time.Sub(now); d > 0 {
		return d
	}
	return 0
}
