package handlers

import (
	"net/http"
	"strconv"
	"time"

	"chainmeet/backend/internal/calendar"
	"chainmeet/backend/internal/http/middleware"
	"chainmeet/backend/internal/meetup"
)

// CalendarMonth groups the snapshot by calendar day of one month, with
// each record's date read in its display zone. The bucketing matches the
// detail views, so a marked day always has records behind it.
func (h *Handler) CalendarMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := now.Month()
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = time.Month(parsed)
	}

	viewer, _ := middleware.IdentityFromContext(r.Context())
	zone := h.viewerZone(r)
	records, fetchedAt := h.svc.Snapshot()
	buckets := meetup.DayBuckets(records, zone, year, month)

	days := make(map[int][]meetupView, len(buckets))
	for day, recs := range buckets {
		days[day] = h.buildViews(recs, viewer, zone, now)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"year":      year,
		"month":     int(month),
		"days":      days,
		"fetchedAt": fetchedAt,
	})
}

// CalendarICS serves the viewer's attending meetups as an iCalendar feed.
func (h *Handler) CalendarICS(w http.ResponseWriter, r *http.Request) {
	viewer, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	records, _ := h.svc.Snapshot()
	attending := meetup.Attending(records, viewer)

	feed := calendar.BuildICS(attending, time.Now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="chainmeet.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed))
}
