package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chainmeet/backend/internal/geocode"
	"chainmeet/backend/internal/http/middleware"
)

// Geocode forward-geocodes a venue query for the hosting form. A newer
// query from the same viewer supersedes this one; lookup failures degrade
// to an empty result set because the host can always type coordinates by
// hand.
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := 3
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.geocoder.Search(r.Context(), viewer.Hex(), query, limit)
	if err != nil {
		if errors.Is(err, geocode.ErrSuperseded) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		logger.Warn("action", "action", "geocode", "status", "degraded", "error", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"results":  []geocode.Result{},
			"degraded": true,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}
