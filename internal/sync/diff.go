package sync

import (
	"sort"

	"entsync/internal/model"
)

// Diff classifies every identifier in desired ∪ observed into exactly one of
// insert, update, unchanged, delete or skipped-foreign.
//
// Deletion is gated by ownership: an observed entry absent from the desired
// set is deleted only when it carries this tool's ownership marker, or, with
// legacyDelete enabled, when its identifier matches the shape used by
// pre-marker versions. Everything else on the calendar (entries a human
// created by hand) is left untouched; that is the safety invariant of the
// whole system.
//
// A common entry is updated when summary, description or location drifted
// textually, when its reminder default disagrees with ours, or when it
// lacks the ownership marker (a one-time re-stamp of legacy entries).
// Unchanged entries get no API write at all, which is what makes repeated
// runs idempotent.
//
// Inserts, Updates and Deletes are returned in identifier order so batch
// submission and logs are deterministic.
func Diff(desired map[string]model.DesiredEntry, observed map[string]model.ObservedEntry, legacyDelete bool) model.Plan {
	var plan model.Plan

	for id, want := range desired {
		have, exists := observed[id]
		if !exists {
			plan.Inserts = append(plan.Inserts, want)
			continue
		}
		if needsUpdate(want, have) {
			plan.Updates = append(plan.Updates, want)
		} else {
			plan.Unchanged++
		}
	}

	for id, have := range observed {
		if _, exists := desired[id]; exists {
			continue
		}
		if owned(have, legacyDelete) {
			plan.Deletes = append(plan.Deletes, id)
		} else {
			plan.SkippedForeign++
		}
	}

	sort.Slice(plan.Inserts, func(i, j int) bool { return plan.Inserts[i].ID < plan.Inserts[j].ID })
	sort.Slice(plan.Updates, func(i, j int) bool { return plan.Updates[i].ID < plan.Updates[j].ID })
	sort.Strings(plan.Deletes)

	return plan
}

// owned is the provenance test guarding deletion.
func owned(e model.ObservedEntry, legacyDelete bool) bool {
	if e.Owned {
		return true
	}
	return legacyDelete && LegacyID(e.ID)
}

func needsUpdate(want model.DesiredEntry, have model.ObservedEntry) bool {
	if want.Summary != have.Summary {
		return true
	}
	if want.Description != have.Description {
		return true
	}
	if want.Location != have.Location {
		return true
	}
	// Managed entries always pin reminders off-default.
	if have.RemindersUseDefault {
		return true
	}
	// Re-stamp entries that predate the ownership marker.
	if !have.Owned {
		return true
	}
	return false
}
