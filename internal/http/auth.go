package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"
)

const refreshCookieName = "refresh_token"

// TokenResponse is the JSON body of every login-shaped endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

func newTokenResponse(pair *domain.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    pair.TokenType,
		ExpiresIn:    int(pair.ExpiresIn.Seconds()),
	}
}

// writeTokenPair sends the pair in the body and mirrors the refresh half into
// an HttpOnly cookie scoped to the refresh endpoint, so browser clients never
// touch it from script.
func writeTokenPair(w http.ResponseWriter, pair *domain.TokenPair, refreshTTL time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/v1/auth",
		MaxAge:   int(refreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	httpx.WriteJSON(w, http.StatusOK, newTokenResponse(pair))
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/v1/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	MemberService *service.MemberService
}

// ServeHTTP godoc
//
//	@Summary		Password login
//	@Description	Verifies email and password and issues a token pair. Issuing displaces any previous session for the member.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object{email=string,password=string}	true	"Credentials"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/v1/auth/login [post]
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	if body.Email == "" || body.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	pair, err := h.MemberService.Login(ctx, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "wrong email or password")
		case errors.Is(err, service.ErrPasswordLoginUnavailable):
			httpx.WriteError(w, http.StatusBadRequest, "password_login_unavailable", "account uses social login")
		default:
			slogx.FromContext(ctx).Error("login failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	writeTokenPair(w, pair, h.MemberService.Sessions.RefreshTTL)
}

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Refresh the session
//	@Description	Rotates the refresh token and issues a new pair. The token comes from the JSON body or the refresh cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object{refresh_token=string}	false	"Refresh token, if not sent as a cookie"
//	@Success		200		{object}	TokenResponse
//	@Failure		401		{object}	httpx.ErrorBody
//	@Router			/v1/auth/refresh [post]
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := refreshTokenFromRequest(r)
	if raw == "" {
		httpx.WriteError(w, http.StatusUnauthorized, "token_malformed", "no refresh token presented")
		return
	}

	pair, err := h.SessionService.Refresh(ctx, raw)
	if err != nil {
		if isTokenError(err) || errors.Is(err, service.ErrRefreshTokenStale) {
			clearRefreshCookie(w)
			httpx.WriteError(w, http.StatusUnauthorized, err.Error(), "")
			return
		}
		slogx.FromContext(ctx).Error("refresh failed", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "")
		return
	}

	writeTokenPair(w, pair, h.SessionService.RefreshTTL)
}

func refreshTokenFromRequest(r *http.Request) string {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		return body.RefreshToken
	}
	if c, err := r.Cookie(refreshCookieName); err == nil {
		return c.Value
	}
	return ""
}

// LogoutHandler serves POST /v1/auth/logout.
type LogoutHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Logout
//	@Description	Blacklists the presented access token and drops the active refresh session.
//	@Tags			Auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		204
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/auth/logout [post]
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteBearerError(w, "missing bearer token")
		return
	}

	if err := h.SessionService.Logout(ctx, claims); err != nil {
		slogx.FromContext(ctx).Error("logout failed", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "")
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// OTCExchangeHandler serves POST /v1/auth/token.
type OTCExchangeHandler struct {
	OTCService *service.OTCService
}

// ServeHTTP godoc
//
//	@Summary		Exchange a one-time code
//	@Description	Trades the code handed out by the OAuth callback for a token pair. Codes are single use; a replay is 410 Gone.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object{code=string}	true	"One-time code"
//	@Success		200		{object}	TokenResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		410		{object}	httpx.ErrorBody
//	@Router			/v1/auth/token [post]
func (h *OTCExchangeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	pair, err := h.OTCService.Exchange(ctx, body.Code)
	if err != nil {
		if errors.Is(err, service.ErrOtcExpiredOrConsumed) {
			httpx.WriteError(w, http.StatusGone, "otc_expired_or_consumed", "code expired or already used")
			return
		}
		slogx.FromContext(ctx).Error("otc exchange failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	writeTokenPair(w, pair, h.OTCService.Sessions.RefreshTTL)
}
