package calendar

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"chainmeet/backend/internal/meetup"
)

// defaultDuration pads events whose records carry only a start instant.
const defaultDuration = 2 * time.Hour

// BuildICS renders records as an iCalendar feed the viewer can subscribe
// to from a desktop calendar. Records without a usable start instant and
// cancelled records are skipped.
func BuildICS(records []meetup.Record, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//chainmeet//backend//EN")
	cal.SetName("Chainmeet")

	for _, rec := range records {
		if rec.StartTime <= 0 || rec.State == meetup.StateCancelled {
			continue
		}
		start := time.UnixMilli(rec.StartTime).UTC()

		ev := cal.AddEvent(fmt.Sprintf("meetup-%d@chainmeet", rec.ID))
		ev.SetDtStampTime(now.UTC())
		ev.SetStartAt(start)
		ev.SetEndAt(start.Add(defaultDuration))
		ev.SetSummary(rec.Title)
		if rec.Description != "" && rec.Description != meetup.TextSentinel {
			ev.SetDescription(rec.Description)
		}
		switch rec.LocationKind {
		case meetup.KindOnline:
			if rec.Location != "" {
				ev.SetURL(rec.Location)
				ev.SetLocation("Online")
			}
		case meetup.KindInPerson:
			ev.SetLocation(rec.Location)
		}
		if !rec.Host.IsZero() {
			if npub, err := rec.Host.Npub(); err == nil {
				ev.SetOrganizer(npub)
			}
		}
	}
	return cal.Serialize()
}
