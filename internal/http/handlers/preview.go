package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// MeetupPreview returns a link preview for an online meetup. Fetch or
// parse failures degrade to a bare URL so the detail page still renders.
func (h *Handler) MeetupPreview(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rec, ok := h.svc.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "meetup not found")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	p, err := h.previews.For(ctx, rec)
	if err != nil {
		logger.Warn("action", "action", "meetup_preview", "status", "degraded", "meetup_id", id, "error", err)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"url":      rec.Location,
			"degraded": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, p)
}
