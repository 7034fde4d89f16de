package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chainmeet/backend/internal/http/middleware"
	"chainmeet/backend/internal/identity"
	"chainmeet/backend/internal/meetup"
)

// meetupView is a record annotated with everything the UI derives per
// request: temporal flags against a fresh reference instant, the zone the
// record renders in, and the viewer's relationship to it.
type meetupView struct {
	meetup.Record
	DisplayZone string            `json:"displayZone"`
	HasStarted  bool              `json:"hasStarted"`
	HasPassed   bool              `json:"hasPassed"`
	Countdown   *meetup.Countdown `json:"countdown,omitempty"`
	IsHost      bool              `json:"isHost"`
	IsAttending bool              `json:"isAttending"`
	CanRegister bool              `json:"canRegister"`
	SpotsLeft   int               `json:"spotsLeft"`
}

func buildView(rec meetup.Record, viewer identity.Identity, zone *time.Location, ref time.Time) meetupView {
	view := meetupView{
		Record:      rec,
		DisplayZone: "UTC",
		HasStarted:  meetup.HasStarted(rec, zone, ref),
		HasPassed:   meetup.HasPassed(rec, zone, ref),
		IsHost:      rec.Host.Equal(viewer),
		IsAttending: meetup.IsAttending(rec, viewer),
		CanRegister: meetup.CanRegister(rec, viewer),
	}
	if display, err := meetup.DisplayLocation(rec, zone); err == nil {
		view.DisplayZone = display.String()
	}
	if cd, ok := meetup.CountdownTo(rec, zone, ref); ok {
		view.Countdown = &cd
	}
	if left := rec.Capacity - len(rec.Attendees); left > 0 {
		view.SpotsLeft = left
	}
	return view
}

func (h *Handler) buildViews(records []meetup.Record, viewer identity.Identity, zone *time.Location, ref time.Time) []meetupView {
	views := make([]meetupView, 0, len(records))
	for _, rec := range records {
		views = append(views, buildView(rec, viewer, zone, ref))
	}
	return views
}

func (h *Handler) writeMeetupList(w http.ResponseWriter, r *http.Request, records []meetup.Record, fetchedAt time.Time) {
	viewer, _ := middleware.IdentityFromContext(r.Context())
	views := h.buildViews(records, viewer, h.viewerZone(r), time.Now())
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meetups":   views,
		"fetchedAt": fetchedAt,
	})
}

// ListMeetups returns the whole snapshot.
func (h *Handler) ListMeetups(w http.ResponseWriter, r *http.Request) {
	records, fetchedAt := h.svc.Snapshot()
	h.writeMeetupList(w, r, records, fetchedAt)
}

// ActiveMeetups returns records that have not passed for this viewer.
func (h *Handler) ActiveMeetups(w http.ResponseWriter, r *http.Request) {
	records, fetchedAt := h.svc.Snapshot()
	active := meetup.Active(records, h.viewerZone(r), time.Now())
	h.writeMeetupList(w, r, active, fetchedAt)
}

// MyMeetups returns records hosted by the viewer.
func (h *Handler) MyMeetups(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, fetchedAt := h.svc.Snapshot()
	h.writeMeetupList(w, r, meetup.HostedBy(records, viewer), fetchedAt)
}

// AttendingMeetups returns records the viewer is registered for.
func (h *Handler) AttendingMeetups(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, fetchedAt := h.svc.Snapshot()
	h.writeMeetupList(w, r, meetup.Attending(records, viewer), fetchedAt)
}

// rankedView wraps a view with its proximity annotations.
type rankedView struct {
	meetupView
	DistanceKM *float64 `json:"distanceKm,omitempty"`
	Closest    bool     `json:"closest,omitempty"`
}

// NearbyMeetups orders active records by distance from the viewer's
// coordinates. Missing or unparsable coordinates fall back to
// chronological order instead of erroring.
func (h *Handler) NearbyMeetups(w http.ResponseWriter, r *http.Request) {
	viewer, _ := middleware.IdentityFromContext(r.Context())
	zone := h.viewerZone(r)
	now := time.Now()

	var viewerLat, viewerLng *float64
	if latStr := r.URL.Query().Get("lat"); latStr != "" {
		if lat, err := strconv.ParseFloat(latStr, 64); err == nil {
			viewerLat = &lat
		}
	}
	if lngStr := r.URL.Query().Get("lng"); lngStr != "" {
		if lng, err := strconv.ParseFloat(lngStr, 64); err == nil {
			viewerLng = &lng
		}
	}

	records, fetchedAt := h.svc.Snapshot()
	active := meetup.Active(records, zone, now)
	ranked := meetup.RankByProximity(active, viewerLat, viewerLng)

	views := make([]rankedView, 0, len(ranked))
	for _, entry := range ranked {
		views = append(views, rankedView{
			meetupView: buildView(entry.Record, viewer, zone, now),
			DistanceKM: entry.DistanceKM,
			Closest:    entry.Closest,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meetups":   views,
		"fetchedAt": fetchedAt,
	})
}

// GetMeetup returns one record by id.
func (h *Handler) GetMeetup(w http.ResponseWriter, r *http.Request) {
	logger := h.loggerForRequest(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	rec, ok := h.svc.Get(id)
	if !ok {
		// Records created moments ago may not be in the snapshot yet.
		ctx, cancel := h.withTimeout(r.Context())
		defer cancel()
		fetched, err := h.svc.Fetch(ctx, id)
		if err != nil {
			logger.Warn("action", "action", "get_meetup", "status", "not_found", "meetup_id", id, "error", err)
			writeError(w, http.StatusNotFound, "meetup not found")
			return
		}
		rec = fetched
	}
	viewer, _ := middleware.IdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, buildView(rec, viewer, h.viewerZone(r), time.Now()))
}
