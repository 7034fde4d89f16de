package handlers

import (
	"net/http"
	"time"
)

// AdminStatus reports snapshot freshness and the chain target in use.
func (h *Handler) AdminStatus(w http.ResponseWriter, r *http.Request) {
	records, fetchedAt := h.svc.Snapshot()

	status := map[string]interface{}{
		"records":   len(records),
		"fetchedAt": fetchedAt,
	}
	if !fetchedAt.IsZero() {
		status["snapshotAgeMs"] = time.Since(fetchedAt).Milliseconds()
	}
	if h.profiles != nil {
		profile := h.profiles.Profile()
		status["chain"] = map[string]string{
			"network":  profile.Network,
			"rpcUrl":   profile.RPCURL,
			"contract": profile.Contract,
		}
	}
	writeJSON(w, http.StatusOK, status)
}

// AdminRefresh forces an immediate snapshot refresh.
func (h *Handler) AdminRefresh(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := h.svc.Refresh(ctx, "admin"); err != nil {
		writeServiceError(w, logger, "admin_refresh", err)
		return
	}
	records, fetchedAt := h.svc.Snapshot()
	logger.Info("action", "action", "admin_refresh", "status", "ok", "records", len(records))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records":   len(records),
		"fetchedAt": fetchedAt,
	})
}
