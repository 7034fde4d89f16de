package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"chainmeet/backend/internal/auth"
	"chainmeet/backend/internal/identity"
)

type sessionRequest struct {
	PublicKey string `json:"publicKey"`
}

// AuthSession issues a session token for a chain identity. The key may be
// given as bech32 npub or hex; both map to the same canonical identity,
// so a session opened with one form sees itself in attendee lists stored
// in the other.
func (h *Handler) AuthSession(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("action", "action", "auth_session", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	id, err := identity.Parse(strings.TrimSpace(req.PublicKey))
	if err != nil {
		logger.Warn("action", "action", "auth_session", "status", "invalid_public_key")
		writeError(w, http.StatusBadRequest, "invalid public key")
		return
	}

	token, err := auth.SignSessionToken(h.cfg.JWTSecret, id, false)
	if err != nil {
		logger.Error("action", "action", "auth_session", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "token error")
		return
	}

	npub, _ := id.Npub()
	logger.Info("action", "action", "auth_session", "status", "ok", "identity", id.Hex())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"identity": map[string]string{
			"hex":  id.Hex(),
			"npub": npub,
		},
	})
}

type adminAuthRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	PublicKey string `json:"publicKey"`
}

// AuthAdmin issues an admin-flagged session token.
func (h *Handler) AuthAdmin(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	var req adminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("action", "action", "auth_admin", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		logger.Warn("action", "action", "auth_admin", "status", "invalid_credentials")
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	if h.cfg.AdminLogin == "" || h.cfg.AdminPassHash == "" {
		logger.Warn("action", "action", "auth_admin", "status", "disabled")
		writeError(w, http.StatusUnauthorized, "admin login disabled")
		return
	}
	if username != h.cfg.AdminLogin {
		logger.Warn("action", "action", "auth_admin", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPassHash), []byte(req.Password)); err != nil {
		logger.Warn("action", "action", "auth_admin", "status", "invalid_credentials")
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	id, err := identity.Parse(strings.TrimSpace(req.PublicKey))
	if err != nil {
		logger.Warn("action", "action", "auth_admin", "status", "invalid_public_key")
		writeError(w, http.StatusBadRequest, "invalid public key")
		return
	}

	token, err := auth.SignSessionToken(h.cfg.JWTSecret, id, true)
	if err != nil {
		logger.Error("action", "action", "auth_admin", "status", "token_error", "error", err)
		writeError(w, http.StatusInternalServerError, "token error")
		return
	}

	npub, _ := id.Npub()
	logger.Info("action", "action", "auth_admin", "status", "ok", "identity", id.Hex())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accessToken": token,
		"identity": map[string]string{
			"hex":  id.Hex(),
			"npub": npub,
		},
	})
}
