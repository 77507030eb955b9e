package sync

import (
	"sort"
	"strings"
	"time"

	"entsync/internal/classify"
	appLog "entsync/internal/log"
	"entsync/internal/model"
)

// wakeBanner is prepended to the description of the first session of each
// day. It doubles as a human-visible hint for why that one entry rings.
const wakeBanner = "⏰ REVEIL ACTIVÉ"

// BuildDesired folds normalization, first-of-day detection and identity
// assignment over all sessions and returns the desired state: a mapping
// from stable identifier to fully-formed calendar payload.
//
// Sessions are kept while their *end* is strictly after now, so a class
// that is currently running stays in the desired set instead of being
// spuriously deleted mid-session.
//
// First-of-day detection requires begin-sorted order over the full
// sequence: with unsorted input, a later session could claim the wake-up
// alarm of an earlier one on the same day. The input slice is not mutated.
func BuildDesired(sessions []model.Session, table *classify.Table, opts Options, now time.Time, alarmMinutes int64) map[string]model.DesiredEntry {
	kept := make([]Normalized, 0, len(sessions))
	for _, s := range sessions {
		n, ok := Normalize(s, table, opts)
		if !ok {
			continue
		}
		if !n.End.After(now) {
			continue
		}
		kept = append(kept, n)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start.Before(kept[j].Start)
	})

	desired := make(map[string]model.DesiredEntry, len(kept))
	seenDays := make(map[string]bool)

	for _, n := range kept {
		entry := model.DesiredEntry{
			ID:          EventID(n.Summary, n.Start),
			Summary:     n.Summary,
			Location:    n.Location,
			Description: strings.TrimSpace(n.Notes),
			Start:       n.Start,
			End:         n.End,
		}

		if !seenDays[n.DayKey] {
			seenDays[n.DayKey] = true
			entry.FirstOfDay = true
			minutes := alarmMinutes
			entry.ReminderMinutes = &minutes
			if entry.Description != "" {
				entry.Description = wakeBanner + "\n\n" + entry.Description
			} else {
				entry.Description = wakeBanner
			}
		}

		if prev, clash := desired[entry.ID]; clash {
			// Digest collision: the later session wins, the earlier one is
			// lost for this run.
			appLog.Warn("desired: identifier collision, dropping earlier session",
				"id", entry.ID, "kept", entry.Summary, "dropped", prev.Summary)
		}
		desired[entry.ID] = entry
	}

	return desired
}
