package httpapi

import (
	"net/http"
)

func (h *Handler) CheckIntegrity(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckIntegrity")
	defer span.End()

	report, err := h.checker.Check(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "integrity check failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, report)
}

func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateBackup")
	defer span.End()

	if err := h.engine.CreateSnapshot(ctx); err != nil {
		h.logger.ErrorContext(ctx, "manual snapshot failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"created": true})
}

func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RestoreBackup")
	defer span.End()

	restored, err := h.engine.RestoreSnapshot(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "restore failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]bool{"restored": restored})
}

func (h *Handler) GetBackupUsage(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetBackupUsage")
	defer span.End()

	usage, err := h.engine.EstimateQuotaUsage(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "estimate usage failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]int{"usagePct": usage})
}

func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ExportData")
	defer span.End()

	payload, err := h.engine.ExportAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "export failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="clubkit-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}
