package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// AuthnMiddleware verifies the bearer access token and stashes the claims in
// the request context. Token-level failures are a 401; a store outage during
// the revocation check is a 503, because "might be revoked" never passes.
func AuthnMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := httpx.BearerToken(r)
			if !ok {
				httpx.WriteBearerError(w, "missing bearer token")
				return
			}

			claims, err := sessions.ValidateAccess(r.Context(), raw)
			if err != nil {
				if isTokenError(err) {
					httpx.WriteBearerError(w, err.Error())
					return
				}
				slogx.FromContext(r.Context()).Error("revocation check unavailable", "error", err)
				httpx.WriteError(w, http.StatusServiceUnavailable,
					"service_unavailable", "authentication temporarily unavailable")
				return
			}

			ctx := context.WithValue(r.Context(), httpx.CtxKeyClaims, claims)
			ctx = context.WithValue(ctx, httpx.CtxKeyMemberID, claims.MemberID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, service.ErrTokenExpired) ||
		errors.Is(err, service.ErrTokenSignatureInvalid) ||
		errors.Is(err, service.ErrTokenRevoked) ||
		errors.Is(err, service.ErrTokenMalformed)
}
