package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/clubkit/clubkit/internal/usecase"
)

func (h *Handler) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateInvitation")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req createInvitationRequest
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

	inv, err := h.invitationService.Invite(ctx, usecase.InviteInput{
		GroupID:     groupID,
		InvitedBy:   req.InvitedBy,
		InviteeName: req.InviteeName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create invitation failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, inv)
}

func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListInvitations")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	invitations, err := h.invitationService.ListByGroup(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list invitations failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, invitations)
}

func (h *Handler) RevokeInvitation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RevokeInvitation")
	defer span.End()

	invitationID := strings.TrimSpace(r.PathValue("invitationID"))
	inv, err := h.invitationService.Revoke(ctx, invitationID)
	if err != nil {
		h.logger.WarnContext(ctx, "revoke invitation failed", "invitation_id", invitationID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, inv)
}
