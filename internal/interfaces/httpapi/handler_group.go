package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/clubkit/clubkit/internal/usecase"
)

func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateGroup")
	defer span.End()

	var req createGroupRequest
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

	g, err := h.groupService.CreateGroup(ctx, usecase.CreateGroupInput{
		UserID:      req.UserID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create group failed", "user_id", req.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, g)
}

func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroups")
	defer span.End()

	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID != "" {
		groups, err := h.groupService.ListMyGroups(ctx, userID)
		if err != nil {
			h.logger.WarnContext(ctx, "list my groups failed", "user_id", userID, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, groups)
		return
	}

	groups, err := h.groupService.ListGroups(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list groups failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, groups)
}

func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGroup")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	g, err := h.groupService.GetGroup(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get group failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, g)
}

func (h *Handler) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateGroup")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))

	var req updateGroupRequest
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

	g, err := h.groupService.UpdateGroup(ctx, groupID, req.Name, req.Description)
	if err != nil {
		h.logger.WarnContext(ctx, "update group failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, g)
}

func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteGroup")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	if err := h.groupService.DeleteGroup(ctx, groupID, userID); err != nil {
		h.logger.WarnContext(ctx, "delete group failed", "group_id", groupID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) RotateInviteCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RotateInviteCode")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	g, err := h.groupService.RotateInviteCode(ctx, groupID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "rotate invite code failed", "group_id", groupID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, g)
}

func (h *Handler) GetGroupShareInfo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetGroupShareInfo")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	info, err := h.groupService.GetShareInfo(ctx, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "get share info failed", "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{
		"groupId":    info.GroupID,
		"inviteCode": info.InviteCode,
		"link":       info.Link,
		"message":    info.Message,
	})
}

func (h *Handler) RemoveGroupMember(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RemoveGroupMember")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	memberID := strings.TrimSpace(r.PathValue("memberID"))
	adminID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	g, err := h.groupService.RemoveMember(ctx, groupID, adminID, memberID)
	if err != nil {
		h.logger.WarnContext(ctx, "remove group member failed",
			"group_id", groupID, "member_id", memberID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, g)
}

func (h *Handler) LeaveGroup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LeaveGroup")
	defer span.End()

	groupID := strings.TrimSpace(r.PathValue("groupID"))
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))

	g, err := h.groupService.LeaveGroup(ctx, groupID, userID)
	if err != nil {
		h.logger.WarnContext(ctx, "leave group failed", "group_id", groupID, "user_id", userID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, g)
}
