package domain

import "time"

// TokenPair is what every login-shaped endpoint returns: the short-lived
// access token and the long-lived refresh token. The refresh half is also the
// member's sole active session in the store; minting a pair invalidates any
// previously issued refresh token for the same member.
type TokenPair struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	TokenType    string        `json:"token_type,omitempty"` // always "Bearer"
	ExpiresIn    time.Duration `json:"expires_in"`           // access token lifetime
}
