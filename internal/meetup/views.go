package meetup

import (
	"time"

	"chainmeet/backend/internal/identity"
)

// The view partitioner derives role- and time-scoped subsets from one
// fetched collection. Partitions are computed per request against a fresh
// reference instant, never cached.

// Active returns records that have not passed relative to ref.
func Active(records []Record, viewer *time.Location, ref time.Time) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		if !HasPassed(rec, viewer, ref) {
			out = append(out, rec)
		}
	}
	return out
}

// HostedBy returns records whose canonical host identity equals who.
func HostedBy(records []Record, who identity.Identity) []Record {
	out := make([]Record, 0)
	for _, rec := range records {
		if rec.Host.Equal(who) {
			out = append(out, rec)
		}
	}
	return out
}

// IsAttending reports whether who appears in the record's attendee set,
// compared by canonical identity.
func IsAttending(rec Record, who identity.Identity) bool {
	for _, attendee := range rec.Attendees {
		if attendee.Equal(who) {
			return true
		}
	}
	return false
}

// Attending returns records whose attendee set contains who.
func Attending(records []Record, who identity.Identity) []Record {
	out := make([]Record, 0)
	for _, rec := range records {
		if IsAttending(rec, who) {
			out = append(out, rec)
		}
	}
	return out
}

// DayBuckets groups records by calendar day of the given month, with each
// record's date read in its display zone. The same zone rule drives date
// formatting, so a calendar dot and the detail list for that date agree.
func DayBuckets(records []Record, viewer *time.Location, year int, month time.Month) map[int][]Record {
	buckets := make(map[int][]Record)
	for _, rec := range records {
		if rec.StartTime <= 0 {
			continue
		}
		display, err := DisplayLocation(rec, viewer)
		if err != nil {
			display = time.UTC
		}
		t := time.UnixMilli(rec.StartTime).In(display)
		if t.Year() != year || t.Month() != month {
			continue
		}
		buckets[t.Day()] = append(buckets[t.Day()], rec)
	}
	return buckets
}
