package service

import "errors"

// Token verification failures. Handlers map each of these to a 401 with the
// matching error code; any other error out of the session paths means the
// store of record is unreachable and authentication fails closed.
var (
	ErrTokenExpired          = errors.New("token_expired")
	ErrTokenSignatureInvalid = errors.New("token_signature_invalid")
	ErrTokenRevoked          = errors.New("token_revoked")
	ErrTokenMalformed        = errors.New("token_malformed")

	// ErrRefreshTokenStale means the presented refresh token verified fine
	// but is not the member's current session: it was rotated away, logged
	// out, or displaced by a newer login.
	ErrRefreshTokenStale = errors.New("refresh_token_stale")
)

// Credential and account failures.
var (
	ErrInvalidCredentials = errors.New("invalid_credentials")

	// ErrPasswordLoginUnavailable is returned for members registered through
	// an OAuth provider; they have no usable password.
	ErrPasswordLoginUnavailable = errors.New("password_login_unavailable")

	// ErrPasswordUnchanged is returned when a password change presents the
	// current password as the new one.
	ErrPasswordUnchanged = errors.New("password_unchanged")
)

// Pairing and code-exchange failures.
var (
	ErrCodeInvalid           = errors.New("code_invalid")
	ErrCodeGenerationFailed  = errors.New("code_generation_failed")
	ErrSelfPairingNotAllowed = errors.New("self_pairing_not_allowed")
	ErrOtcExpiredOrConsumed  = errors.New("otc_expired_or_consumed")
	ErrStateInvalid          = errors.New("state_invalid")
)
