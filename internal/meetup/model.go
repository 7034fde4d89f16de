package meetup

import (
	"chainmeet/backend/internal/identity"
)

// LocationKind tells whether a meetup happens at a venue or online.
type LocationKind string

const (
	KindOnline   LocationKind = "Online"
	KindInPerson LocationKind = "InPerson"
)

// LifecycleState is owned and transitioned by the contract; the gateway
// only reads it.
type LifecycleState string

const (
	StatePlanned   LifecycleState = "Planned"
	StateOngoing   LifecycleState = "Ongoing"
	StateEnded     LifecycleState = "Ended"
	StateCancelled LifecycleState = "Cancelled"
)

// TextSentinel replaces text fields that could not be decoded.
const TextSentinel = "N/A"

// Record is the canonical post-decode form of one contract meetup entry.
// Records only come out of the decoder; the gateway never constructs,
// mutates, or persists one. Every state change is a contract call followed
// by a re-fetch.
type Record struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	// LocationKind selects how Location is interpreted: a URL when Online,
	// a "<lat>,<lng>" pair when InPerson.
	LocationKind LocationKind `json:"locationKind"`
	Location     string       `json:"location"`
	// TimeZone is the meetup's declared IANA zone, "UTC" when absent or
	// undecodable.
	TimeZone string `json:"timeZone"`
	// StartTime is milliseconds since epoch, always a UTC instant no matter
	// which zone it is displayed in.
	StartTime int64 `json:"startTime"`
	// PriceMinor and TotalPaidMinor are in the chain's smallest currency
	// unit. nil means the contract value could not be parsed and the UI
	// shows a placeholder.
	PriceMinor     *int64              `json:"priceMinorUnits"`
	TotalPaidMinor *int64              `json:"totalPaidMinorUnits"`
	Capacity       int                 `json:"capacity"`
	Attendees      []identity.Identity `json:"attendeeIdentities"`
	Host           identity.Identity   `json:"hostIdentity"`
	State          LifecycleState      `json:"lifecycleState"`
}
