package httpx

import (
	"context"

	"github.com/yeoro/twogether/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyMemberID ctxKey = "member_id"
	CtxKeyClaims   ctxKey = "claims"
)

// MemberIDFromContext returns the authenticated member id, or 0 when the
// request carries no valid access token.
func MemberIDFromContext(ctx context.Context) int64 {
	if v, ok := ctx.Value(CtxKeyMemberID).(int64); ok {
		return v
	}
	return 0
}

// ClaimsFromContext returns the verified access-token claims, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}
