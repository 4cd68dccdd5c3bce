package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/domain"
	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"
)

const minPasswordLength = 8

// MemberResponse is the public view of a member.
type MemberResponse struct {
	ID                  int64  `json:"id"`
	Email               string `json:"email"`
	Name                string `json:"name"`
	Platform            string `json:"platform"`
	Nickname            string `json:"nickname,omitempty"`
	PartnerID           int64  `json:"partner_id,omitempty"`
	RelationshipStarted string `json:"relationship_started,omitempty"`
}

func newMemberResponse(m domain.Member) MemberResponse {
	resp := MemberResponse{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Platform:  m.Platform,
		Nickname:  m.Nickname,
		PartnerID: m.PartnerID,
	}
	if !m.RelationshipStarted.IsZero() {
		resp.RelationshipStarted = m.RelationshipStarted.Format("2006-01-02")
	}
	return resp
}

// SignupHandler serves POST /v1/members/signup.
type SignupHandler struct {
	MemberService *service.MemberService
}

// ServeHTTP godoc
//
//	@Summary		Register a local account
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Param			body	body		object{email=string,name=string,password=string}	true	"New account"
//	@Success		201		{object}	MemberResponse
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Router			/v1/members/signup [post]
func (h *SignupHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	body.Email = strings.TrimSpace(body.Email)
	body.Name = strings.TrimSpace(body.Name)

	switch {
	case body.Email == "" || !strings.Contains(body.Email, "@"):
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "a valid email is required")
		return
	case body.Name == "":
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	case len(body.Password) < minPasswordLength:
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "password must be at least 8 characters")
		return
	}

	m, err := h.MemberService.Signup(ctx, body.Email, body.Name, body.Password)
	if err != nil {
		if errors.Is(err, directory.ErrEmailTaken) {
			httpx.WriteError(w, http.StatusConflict, "email_taken", "email already registered")
			return
		}
		slogx.FromContext(ctx).Error("signup failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newMemberResponse(m))
}

// MeHandler serves GET /v1/members/me.
type MeHandler struct {
	MemberService *service.MemberService
}

// ServeHTTP godoc
//
//	@Summary		Current member
//	@Description	Returns the authenticated member with live pairing state, which may be fresher than the token's snapshot.
//	@Tags			Members
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	MemberResponse
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/members/me [get]
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := httpx.MemberIDFromContext(ctx)

	m, err := h.MemberService.Directory.GetMember(ctx, memberID)
	if err != nil {
		slogx.FromContext(ctx).Error("member lookup failed", "member_id", memberID, "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newMemberResponse(m))
}

// PasswordHandler serves PUT /v1/members/password.
type PasswordHandler struct {
	MemberService *service.MemberService
}

// ServeHTTP godoc
//
//	@Summary		Change password
//	@Description	Verifies the current password, stores the new one, and revokes the session that made the call. Clients must log in again.
//	@Tags			Members
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		object{current_password=string,new_password=string}	true	"Passwords"
//	@Success		204
//	@Failure		400	{object}	httpx.ErrorBody
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/members/password [put]
func (h *PasswordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok {
		httpx.WriteBearerError(w, "missing bearer token")
		return
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if len(body.NewPassword) < minPasswordLength {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "password must be at least 8 characters")
		return
	}

	err := h.MemberService.ChangePassword(ctx, claims, body.CurrentPassword, body.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "current password is wrong")
		case errors.Is(err, service.ErrPasswordUnchanged):
			httpx.WriteError(w, http.StatusBadRequest, "password_unchanged", "new password must differ from the current one")
		case errors.Is(err, service.ErrPasswordLoginUnavailable):
			httpx.WriteError(w, http.StatusBadRequest, "password_login_unavailable", "account uses social login")
		default:
			slogx.FromContext(ctx).Error("password change failed", "error", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		}
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}
