package meetup

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"chainmeet/backend/internal/chain"
	"chainmeet/backend/internal/identity"
	"chainmeet/backend/internal/metrics"
)

// Decoder turns raw contract output into Records. Decoding is lenient on
// purpose: one malformed field gets a sentinel, one malformed record gets
// skipped, and the rest of the batch always comes through.
type Decoder struct {
	logger *slog.Logger
}

// NewDecoder creates decoder.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{logger: logger}
}

// rawRecord mirrors the loosely-typed shape one contract entry arrives in.
type rawRecord struct {
	ID           chain.NumberValue `json:"id"`
	Title        chain.TextValue   `json:"title"`
	Description  chain.TextValue   `json:"description"`
	LocationKind chain.EnumValue   `json:"location_kind"`
	Location     chain.TextValue   `json:"location"`
	TimeZone     chain.TextValue   `json:"time_zone"`
	StartTime    chain.NumberValue `json:"start_time"`
	Price        chain.NumberValue `json:"price"`
	TotalPaid    chain.NumberValue `json:"total_paid"`
	Capacity     chain.NumberValue `json:"capacity"`
	Attendees    []chain.TextValue `json:"attendees"`
	Host         chain.TextValue   `json:"host"`
	Status       chain.EnumValue   `json:"status"`
}

// DecodeAll decodes a full query output. A null or absent output is an
// empty collection, not an error.
func (d *Decoder) DecodeAll(output json.RawMessage) []Record {
	output = bytes.TrimSpace(output)
	if len(output) == 0 || bytes.Equal(output, []byte("null")) {
		return []Record{}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(output, &entries); err != nil {
		d.fallback("collection", err)
		return []Record{}
	}
	records := make([]Record, 0, len(entries))
	for _, entry := range entries {
		var raw rawRecord
		if err := json.Unmarshal(entry, &raw); err != nil {
			d.fallback("record", err)
			continue
		}
		records = append(records, d.decodeRecord(raw))
	}
	return records
}

// DecodeOne decodes a single-record query output.
func (d *Decoder) DecodeOne(output json.RawMessage) (Record, bool) {
	output = bytes.TrimSpace(output)
	if len(output) == 0 || bytes.Equal(output, []byte("null")) {
		return Record{}, false
	}
	var raw rawRecord
	if err := json.Unmarshal(output, &raw); err != nil {
		d.fallback("record", err)
		return Record{}, false
	}
	return d.decodeRecord(raw), true
}

// decodeRecord applies the per-field fallback policy: sentinels instead of
// aborting, so one bad field never hides the rest of the batch.
func (d *Decoder) decodeRecord(raw rawRecord) Record {
	rec := Record{
		Title:       TextSentinel,
		Description: TextSentinel,
		TimeZone:    "UTC",
	}

	if id, err := raw.ID.Int64(); err == nil {
		rec.ID = id
	} else {
		d.fallback("id", err)
	}
	if title, err := raw.Title.Decode(); err == nil {
		rec.Title = title
	} else {
		d.fallback("title", err)
	}
	if desc, err := raw.Description.Decode(); err == nil {
		rec.Description = desc
	} else {
		d.fallback("description", err)
	}

	rec.LocationKind = d.decodeLocationKind(raw.LocationKind)

	if loc, err := raw.Location.Decode(); err == nil {
		rec.Location = loc
	} else {
		d.fallback("location", err)
	}

	if tz, err := raw.TimeZone.Decode(); err == nil && tz != "" {
		if _, loadErr := time.LoadLocation(tz); loadErr == nil {
			rec.TimeZone = tz
		} else {
			d.fallback("time_zone", loadErr)
		}
	} else if err != nil {
		d.fallback("time_zone", err)
	}

	if start, err := raw.StartTime.Int64(); err == nil {
		rec.StartTime = start
	} else {
		d.fallback("start_time", err)
	}

	// Unknown amounts stay nil so the UI shows a placeholder and sorting
	// does not treat them as zero.
	if price, err := raw.Price.Int64(); err == nil {
		rec.PriceMinor = &price
	} else {
		d.fallback("price", err)
	}
	if paid, err := raw.TotalPaid.Int64(); err == nil {
		rec.TotalPaidMinor = &paid
	} else {
		d.fallback("total_paid", err)
	}
	if capacity, err := raw.Capacity.Int64(); err == nil {
		rec.Capacity = int(capacity)
	} else {
		d.fallback("capacity", err)
	}

	rec.Attendees = make([]identity.Identity, 0, len(raw.Attendees))
	for _, attendee := range raw.Attendees {
		text, err := attendee.Decode()
		if err != nil {
			d.fallback("attendee", err)
			continue
		}
		id, err := identity.Parse(text)
		if err != nil {
			d.fallback("attendee", err)
			continue
		}
		rec.Attendees = append(rec.Attendees, id)
	}

	if host, err := raw.Host.Decode(); err == nil {
		if id, parseErr := identity.Parse(host); parseErr == nil {
			rec.Host = id
		} else {
			d.fallback("host", parseErr)
		}
	} else {
		d.fallback("host", err)
	}

	rec.State = d.decodeState(raw.Status)
	return rec
}

func (d *Decoder) decodeLocationKind(v chain.EnumValue) LocationKind {
	variant, err := v.Variant()
	if err != nil {
		d.fallback("location_kind", err)
		return KindOnline
	}
	switch LocationKind(variant) {
	case KindOnline, KindInPerson:
		return LocationKind(variant)
	default:
		d.logger.Warn("decode_fallback", "field", "location_kind", "variant", variant)
		metrics.DecodeFallbacks.WithLabelValues("location_kind").Inc()
		return KindOnline
	}
}

func (d *Decoder) decodeState(v chain.EnumValue) LifecycleState {
	variant, err := v.Variant()
	if err != nil {
		d.fallback("status", err)
		return StatePlanned
	}
	switch LifecycleState(variant) {
	case StatePlanned, StateOngoing, StateEnded, StateCancelled:
		return LifecycleState(variant)
	default:
		d.logger.Warn("decode_fallback", "field", "status", "variant", variant)
		metrics.DecodeFallbacks.WithLabelValues("status").Inc()
		return StatePlanned
	}
}

func (d *Decoder) fallback(field string, err error) {
	d.logger.Warn("decode_fallback", "field", field, "error", err)
	metrics.DecodeFallbacks.WithLabelValues(field).Inc()
}
