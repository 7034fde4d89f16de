package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chainmeet/backend/internal/http/middleware"
	"chainmeet/backend/internal/identity"
	"chainmeet/backend/internal/meetup"
	"chainmeet/backend/internal/service"
)

type createMeetupRequest struct {
	Title        string `json:"title" validate:"required,max=80"`
	Description  string `json:"description" validate:"required,max=1000"`
	LocationKind string `json:"locationKind" validate:"required,oneof=Online InPerson"`
	Location     string `json:"location" validate:"required,max=300"`
	TimeZone     string `json:"timeZone" validate:"required"`
	StartTime    int64  `json:"startTime" validate:"required,gt=0"`
	PriceMinor   int64  `json:"priceMinorUnits" validate:"gte=0"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
}

// CreateMeetup submits a create call for the authenticated host. Nothing
// is stored locally: the new record only appears once the post-settle
// refetch returns it.
func (h *Handler) CreateMeetup(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createMeetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("action", "action", "create_meetup", "status", "invalid_json")
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		logger.Warn("action", "action", "create_meetup", "status", "validation_failed", "error", err)
		writeError(w, http.StatusBadRequest, "validation failed")
		return
	}
	if _, err := time.LoadLocation(req.TimeZone); err != nil {
		logger.Warn("action", "action", "create_meetup", "status", "invalid_time_zone")
		writeError(w, http.StatusBadRequest, "invalid time zone")
		return
	}
	if meetup.LocationKind(req.LocationKind) == meetup.KindInPerson {
		if _, _, ok := meetup.ParseCoordinates(req.Location); !ok {
			logger.Warn("action", "action", "create_meetup", "status", "invalid_coordinates")
			writeError(w, http.StatusBadRequest, "location must be \"<lat>,<lng>\"")
			return
		}
	}
	if !h.actionLimiter.Allow(viewer.Hex()) {
		logger.Warn("action", "action", "create_meetup", "status", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many actions")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	draft := service.CreateDraft{
		Title:        req.Title,
		Description:  req.Description,
		LocationKind: meetup.LocationKind(req.LocationKind),
		Location:     req.Location,
		TimeZone:     req.TimeZone,
		StartTime:    req.StartTime,
		PriceMinor:   req.PriceMinor,
		Capacity:     req.Capacity,
	}
	if err := h.svc.Create(ctx, draft, viewer); err != nil {
		writeServiceError(w, logger, "create_meetup", err)
		return
	}

	logger.Info("action", "action", "create_meetup", "status", "ok")
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}

// RegisterMeetup registers the viewer and attaches the meetup's price.
func (h *Handler) RegisterMeetup(w http.ResponseWriter, r *http.Request) {
	h.meetupAction(w, r, "register_meetup", h.svc.Register)
}

// UnregisterMeetup cancels the viewer's registration.
func (h *Handler) UnregisterMeetup(w http.ResponseWriter, r *http.Request) {
	h.meetupAction(w, r, "unregister_meetup", h.svc.Unregister)
}

// CancelMeetup cancels a meetup the viewer hosts.
func (h *Handler) CancelMeetup(w http.ResponseWriter, r *http.Request) {
	h.meetupAction(w, r, "cancel_meetup", h.svc.CancelMeetup)
}

// meetupAction is the shared skeleton of the id-scoped contract actions.
func (h *Handler) meetupAction(w http.ResponseWriter, r *http.Request, action string, call func(ctx context.Context, id int64, viewer identity.Identity) error) {
	logger := h.loggerForRequest(r)
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if !h.actionLimiter.Allow(viewer.Hex()) {
		logger.Warn("action", "action", action, "status", "rate_limited")
		writeError(w, http.StatusTooManyRequests, "too many actions")
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if err := call(ctx, id, viewer); err != nil {
		writeServiceError(w, logger, action, err)
		return
	}

	logger.Info("action", "action", action, "status", "ok", "meetup_id", id)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "submitted"})
}
