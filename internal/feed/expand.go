package feed

import (
	"time"

	"github.com/teambition/rrule-go"

	appLog "entsync/internal/log"
	"entsync/internal/model"
)

// maxOccurrencesPerEvent caps recurrence expansion so a malformed unbounded
// RRULE cannot blow up a run.
const maxOccurrencesPerEvent = 500

// Expand flattens feed events into concrete sessions.
//
// Non-recurring events map 1:1. Recurring events are expanded with their
// RRULE and EXDATEs into occurrences within [now-1d, now+horizonDays]; the
// day of slack at the lower bound keeps an in-progress occurrence alive so
// the desired-state builder can apply its own end-after-now filter.
//
// An invalid RRULE drops only that event (with a warning), not the run.
func Expand(events []Event, now time.Time, horizonDays int) []model.Session {
	rangeStart := now.AddDate(0, 0, -1)
	rangeEnd := now.AddDate(0, 0, horizonDays)

	sessions := make([]model.Session, 0, len(events))

	for _, ev := range events {
		if ev.RawRRule == "" {
			sessions = append(sessions, model.Session{
				Title:    ev.Title,
				Notes:    ev.Notes,
				Location: ev.Location,
				Start:    ev.Start,
				End:      ev.End,
			})
			continue
		}

		r, err := rrule.StrToRRule(ev.RawRRule)
		if err != nil {
			appLog.Warn("feed: invalid RRULE, dropping event", "title", ev.Title, "rrule", ev.RawRRule)
			continue
		}
		r.DTStart(ev.Start)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range ev.ExDates {
			set.ExDate(ex.In(ev.Start.Location()))
		}

		occStarts := set.Between(rangeStart.In(ev.Start.Location()), rangeEnd.In(ev.Start.Location()), true)
		if len(occStarts) > maxOccurrencesPerEvent {
			appLog.Warn("feed: recurrence expansion capped", "title", ev.Title, "cap", maxOccurrencesPerEvent)
			occStarts = occStarts[:maxOccurrencesPerEvent]
		}

		dur := ev.End.Sub(ev.Start)
		for _, start := range occStarts {
			sessions = append(sessions, model.Session{
				Title:    ev.Title,
				Notes:    ev.Notes,
				Location: ev.Location,
				Start:    start,
				End:      start.Add(dur),
			})
		}
	}

	return sessions
}
