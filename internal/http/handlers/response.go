package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"chainmeet/backend/internal/chain"
	"chainmeet/backend/internal/service"
)

// writeJSON writes j s o n.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError writes error.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps a service failure onto an HTTP status. Contract
// refusals are the caller's fault (conflict), chain transport failures are
// the upstream's (bad gateway).
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, action string, err error) {
	switch {
	case errors.Is(err, service.ErrActionInFlight):
		logger.Warn("action", "action", action, "status", "in_flight")
		writeError(w, http.StatusConflict, "action already in flight")
	case errors.Is(err, service.ErrNotFound):
		logger.Warn("action", "action", action, "status", "not_found")
		writeError(w, http.StatusNotFound, "meetup not found")
	case errors.Is(err, service.ErrNotEligible):
		logger.Warn("action", "action", action, "status", "not_eligible")
		writeError(w, http.StatusConflict, "not eligible")
	case errors.Is(err, service.ErrNotHost):
		logger.Warn("action", "action", action, "status", "not_host")
		writeError(w, http.StatusForbidden, "not the host")
	case errors.Is(err, service.ErrPriceUnknown):
		logger.Warn("action", "action", action, "status", "price_unknown")
		writeError(w, http.StatusConflict, "price could not be determined")
	default:
		var queryErr *chain.QueryError
		if errors.As(err, &queryErr) {
			logger.Error("action", "action", action, "status", "contract_error", "error", err)
			writeError(w, http.StatusBadGateway, "contract call failed")
			return
		}
		logger.Error("action", "action", action, "status", "chain_error", "error", err)
		writeError(w, http.StatusBadGateway, "chain unavailable")
	}
}
