package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/clubkit/clubkit/internal/usecase"
)

// PreviewJoin resolves the token carried by a share link without joining.
// The UI asks here first so it can show the group behind the link.
func (h *Handler) PreviewJoin(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PreviewJoin")
	defer span.End()

	g, err := h.joinService.PreviewJoin(ctx, r.URL.Query().Get("token"))
	if err != nil {
		h.logger.WarnContext(ctx, "join preview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"group": g,
	})
}

// Join accepts either a share token or a hand-typed invite code. With both
// present the token wins; it carries the stricter checks.
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Join")
	defer span.End()

	var req joinRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var (
		result usecase.JoinResult
		err    error
	)
	switch {
	case strings.TrimSpace(req.Token) != "":
		result, err = h.joinService.JoinByToken(ctx, usecase.JoinByTokenInput{
			UserID: req.UserID,
			Token:  req.Token,
		})
	case strings.TrimSpace(req.InviteCode) != "":
		result, err = h.joinService.JoinByCode(ctx, usecase.JoinByCodeInput{
			UserID:     req.UserID,
			InviteCode: req.InviteCode,
		})
	default:
		err = fmt.Errorf("%w: either token or invite_code is required", usecase.ErrInvalidInput)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "join failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if !result.AlreadyMember {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, map[string]any{
		"group":         result.Group,
		"alreadyMember": result.AlreadyMember,
	})
}
