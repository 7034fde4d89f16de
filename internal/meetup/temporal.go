package meetup

import (
	"fmt"
	"log/slog"
	"time"
)

// CountdownWindow is how far ahead of the reference instant a countdown is
// still rendered.
const CountdownWindow = 48 * time.Hour

// DisplayLocation returns the zone a record is rendered in for a given
// viewer: the viewer's own zone for Online records, the record's declared
// zone for InPerson records. The same rule feeds date formatting, the
// started/passed checks, and calendar bucketing so they always agree.
func DisplayLocation(rec Record, viewer *time.Location) (*time.Location, error) {
	if rec.LocationKind == KindInPerson {
		loc, err := time.LoadLocation(rec.TimeZone)
		if err != nil {
			return nil, fmt.Errorf("load zone %q: %w", rec.TimeZone, err)
		}
		return loc, nil
	}
	if viewer == nil {
		return time.UTC, nil
	}
	return viewer, nil
}

// startAsViewerLocal reads the start instant as a wall clock in the display
// zone and then reinterprets that wall clock in the viewer's zone.
//
// This is NOT a true cross-zone instant comparison: the upstream UI gates
// its buttons on exactly this double conversion, so the quirk is kept
// rather than corrected. Changing it to a proper UTC comparison would flip
// which actions are enabled near zone boundaries.
func startAsViewerLocal(rec Record, viewer *time.Location) (time.Time, error) {
	if rec.StartTime <= 0 {
		return time.Time{}, fmt.Errorf("invalid start time %d", rec.StartTime)
	}
	display, err := DisplayLocation(rec, viewer)
	if err != nil {
		return time.Time{}, err
	}
	if viewer == nil {
		viewer = time.UTC
	}
	wall := time.UnixMilli(rec.StartTime).In(display)
	return time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), viewer), nil
}

// HasStarted reports whether the record's derived local start is at or
// before the reference instant. Evaluation failures fail open: not started.
func HasStarted(rec Record, viewer *time.Location, ref time.Time) bool {
	local, err := startAsViewerLocal(rec, viewer)
	if err != nil {
		slog.Warn("temporal_eval_failed", "meetup_id", rec.ID, "error", err)
		return false
	}
	return !local.After(ref)
}

// HasPassed is HasStarted with a strict comparison: at the exact derived
// start instant a record has started but not passed.
func HasPassed(rec Record, viewer *time.Location, ref time.Time) bool {
	local, err := startAsViewerLocal(rec, viewer)
	if err != nil {
		slog.Warn("temporal_eval_failed", "meetup_id", rec.ID, "error", err)
		return false
	}
	return local.Before(ref)
}

// Countdown is the remaining time to a start, decomposed by floor division.
type Countdown struct {
	Days    int64 `json:"days"`
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
}

func (c Countdown) String() string {
	return fmt.Sprintf("%dd %dh %dm %ds", c.Days, c.Hours, c.Minutes, c.Seconds)
}

// CountdownTo produces a countdown when the derived start lies in the
// future within CountdownWindow of the reference; otherwise none.
func CountdownTo(rec Record, viewer *time.Location, ref time.Time) (Countdown, bool) {
	local, err := startAsViewerLocal(rec, viewer)
	if err != nil {
		return Countdown{}, false
	}
	remaining := local.Sub(ref)
	if remaining <= 0 || remaining > CountdownWindow {
		return Countdown{}, false
	}
	seconds := int64(remaining / time.Second)
	return Countdown{
		Days:    seconds / 86400,
		Hours:   (seconds % 86400) / 3600,
		Minutes: (seconds % 3600) / 60,
		Seconds: seconds % 60,
	}, true
}
