package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// OAuthHandler serves the social-login redirect pair.
type OAuthHandler struct {
	OAuthService *service.OAuthService
	FrontURL     string
}

// HandleStart godoc
//
//	@Summary		Start Kakao login
//	@Description	Mints an anti-CSRF state and redirects the browser to Kakao's authorize page.
//	@Tags			OAuth
//	@Param			return_to	query	string	false	"Front-end path to land on after login"
//	@Success		302
//	@Router			/v1/oauth/kakao [get]
func (h *OAuthHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	returnTo := sanitizeReturnTo(r.URL.Query().Get("return_to"))

	authorizeURL, err := h.OAuthService.Start(ctx, returnTo)
	if err != nil {
		slogx.FromContext(ctx).Error("oauth start failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Kakao login callback
//	@Description	Consumes the state, logs the member in, and redirects back to the front end with a one-time code.
//	@Tags			OAuth
//	@Param			state	query	string	true	"Anti-CSRF state minted at start"
//	@Param			code	query	string	true	"Provider authorization code"
//	@Success		302
//	@Failure		400	{object}	httpx.ErrorBody
//	@Router			/v1/oauth/kakao/callback [get]
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "state and code are required")
		return
	}

	otcCode, returnTo, err := h.OAuthService.Callback(ctx, state, code)
	if err != nil {
		if errors.Is(err, service.ErrStateInvalid) {
			httpx.WriteError(w, http.StatusBadRequest, "state_invalid", "unknown or replayed state")
			return
		}
		slogx.FromContext(ctx).Error("oauth callback failed", "error", err)
		httpx.WriteError(w, http.StatusBadGateway, "provider_error", "login with provider failed")
		return
	}

	q := url.Values{}
	q.Set("code", otcCode)
	if returnTo != "" {
		q.Set("return_to", returnTo)
	}
	http.Redirect(w, r, h.FrontURL+"/oauth/complete?"+q.Encode(), http.StatusFound)
}

// sanitizeReturnTo keeps the redirect target on our own front end: only
// absolute paths survive, anything with a scheme or host is dropped.
func sanitizeReturnTo(raw string) string {
	if raw == "" || raw[0] != '/' {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return u.String()
}
