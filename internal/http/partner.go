package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yeoro/twogether/internal/directory"
	"github.com/yeoro/twogether/internal/service"
	"github.com/yeoro/twogether/pkg/httpx"
	"github.com/yeoro/twogether/pkg/slogx"
)

// PartnerHandler serves the pairing endpoints.
type PartnerHandler struct {
	PairingService *service.PairingService
	SessionService *service.SessionService
}

// HandleGenerateCode godoc
//
//	@Summary		Get a pairing code
//	@Description	Returns the member's live pairing code, minting one if none exists. The code is 6 characters (A-Z, 0-9) and expires after three minutes.
//	@Tags			Partner
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{code=string,expires_in=int}
//	@Failure		401	{object}	httpx.ErrorBody
//	@Router			/v1/partner/code [post]
func (h *PartnerHandler) HandleGenerateCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := httpx.MemberIDFromContext(ctx)

	code, err := h.PairingService.GenerateCode(ctx, memberID)
	if err != nil {
		if errors.Is(err, service.ErrCodeGenerationFailed) {
			httpx.WriteError(w, http.StatusInternalServerError, "code_generation_failed", "could not mint a unique code")
			return
		}
		slogx.FromContext(ctx).Error("pairing code generation failed", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"code":       code,
		"expires_in": int(service.DefaultPairingCodeTTL.Seconds()),
	})
}

// HandlePair godoc
//
//	@Summary		Pair with a partner
//	@Description	Consumes the partner's code, records the mutual relationship, and returns a fresh token pair carrying the new partner claims.
//	@Tags			Partner
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			body	body		object{code=string}	true	"Partner's pairing code"
//	@Success		200		{object}	object{partner_id=int,partner_name=string,tokens=TokenResponse}
//	@Failure		400		{object}	httpx.ErrorBody
//	@Failure		409		{object}	httpx.ErrorBody
//	@Router			/v1/partner/pair [post]
func (h *PartnerHandler) HandlePair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := httpx.MemberIDFromContext(ctx)

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Code == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code is required")
		return
	}

	partner, err := h.PairingService.Pair(ctx, memberID, body.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCodeInvalid):
			httpx.WriteError(w, http.StatusBadRequest, "code_invalid", "unknown or expired pairing code")
		case errors.Is(err, service.ErrSelfPairingNotAllowed):
			httpx.WriteError(w, http.StatusBadRequest, "self_pairing_not_allowed", "cannot pair with yourself")
		case errors.Is(err, directory.ErrAlreadyPaired):
			httpx.WriteError(w, http.StatusConflict, "already_paired", "one of the members already has a partner")
		default:
			slogx.FromContext(ctx).Error("pairing failed", "error", err)
			httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "")
		}
		return
	}

	// The old access token predates the relationship; hand back a fresh pair
	// so the partner claims are immediately usable.
	pair, err := h.SessionService.Issue(ctx, memberID)
	if err != nil {
		slogx.FromContext(ctx).Error("token reissue after pairing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"partner_id":   partner.ID,
		"partner_name": partner.Name,
		"tokens":       newTokenResponse(pair),
	})
}

// HandleUnpair godoc
//
//	@Summary		Unpair
//	@Description	Dissolves the relationship on both sides and returns a fresh token pair without the partner claims.
//	@Tags			Partner
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	object{tokens=TokenResponse}
//	@Failure		409	{object}	httpx.ErrorBody
//	@Router			/v1/partner [delete]
func (h *PartnerHandler) HandleUnpair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := httpx.MemberIDFromContext(ctx)

	if err := h.PairingService.Unpair(ctx, memberID); err != nil {
		if errors.Is(err, directory.ErrNotPaired) {
			httpx.WriteError(w, http.StatusConflict, "not_paired", "member has no partner")
			return
		}
		slogx.FromContext(ctx).Error("unpair failed", "error", err)
		httpx.WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "")
		return
	}

	pair, err := h.SessionService.Issue(ctx, memberID)
	if err != nil {
		slogx.FromContext(ctx).Error("token reissue after unpairing failed", "error", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"tokens": newTokenResponse(pair),
	})
}
