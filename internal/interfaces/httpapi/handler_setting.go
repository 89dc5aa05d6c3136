package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/clubkit/clubkit/internal/usecase"
)

type putSettingRequest struct {
	Value any `json:"value"`
}

func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSettings")
	defer span.End()

	settings, err := h.settingService.ListSettings(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list settings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, settings)
}

func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSetting")
	defer span.End()

	settingID := strings.TrimSpace(r.PathValue("settingID"))
	v, err := h.settingService.GetSetting(ctx, settingID)
	if err != nil {
		h.logger.WarnContext(ctx, "get setting failed", "setting_id", settingID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, v)
}

func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PutSetting")
	defer span.End()

	settingID := strings.TrimSpace(r.PathValue("settingID"))

	var req putSettingRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}

	v, err := h.settingService.PutSetting(ctx, settingID, req.Value)
	if err != nil {
		h.logger.WarnContext(ctx, "put setting failed", "setting_id", settingID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, v)
}

func (h *Handler) DeleteSetting(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DeleteSetting")
	defer span.End()

	settingID := strings.TrimSpace(r.PathValue("settingID"))
	if err := h.settingService.DeleteSetting(ctx, settingID); err != nil {
		h.logger.WarnContext(ctx, "delete setting failed", "setting_id", settingID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"deleted": true})
}
