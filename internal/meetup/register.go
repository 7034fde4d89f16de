package meetup

import (
	"chainmeet/backend/internal/identity"
)

// CanRegister reports whether the viewer may register for the record. All
// conditions must hold: the meetup is still Planned, it has a free seat,
// and the viewer is neither the host nor already an attendee. The host
// check short-circuits first: a host can never register for their own
// meetup regardless of the other fields.
func CanRegister(rec Record, viewer identity.Identity) bool {
	if viewer.Equal(rec.Host) {
		return false
	}
	if rec.State != StatePlanned {
		return false
	}
	if len(rec.Attendees) >= rec.Capacity {
		return false
	}
	if IsAttending(rec, viewer) {
		return false
	}
	return true
}
