package model

import "time"

// Session is one scheduled class/exam/event occurrence as parsed from the
// portal feed, before any classification or identity assignment.
type Session struct {
	// Title is the raw SUMMARY of the feed entry. Sessions with an empty
	// title are discarded by the normalizer.
	Title string

	// Notes is the raw DESCRIPTION; the portal packs group/teacher/module
	// codes in here, so classification searches it too.
	Notes string

	Location string

	// Start / End are timezone-aware instants from the feed.
	Start time.Time
	End   time.Time
}

// DesiredEntry is the fully-formed calendar payload for one session, as this
// tool wants it to exist on the remote calendar. Recomputed from scratch on
// every run; never persisted.
type DesiredEntry struct {
	// ID is the stable content-derived identifier ("cal" + 32 hex chars).
	ID string

	Summary     string
	Location    string
	Description string

	Start time.Time
	End   time.Time

	// ReminderMinutes is the popup reminder lead time. Nil disables
	// reminders entirely (the default for all but the first session of a
	// day, which carries the wake-up alarm).
	ReminderMinutes *int64

	// FirstOfDay marks the chronologically earliest session of its civil
	// day; such entries carry the wake-up alarm and banner.
	FirstOfDay bool
}

// ObservedEntry is a read-only snapshot of one remote calendar event, reduced
// to the fields the diff engine compares.
type ObservedEntry struct {
	ID string

	Summary     string
	Location    string
	Description string

	// Owned reports whether the remote event carries this tool's
	// ownership marker. Entries without it are never deleted unless they
	// match the legacy identifier shape.
	Owned bool

	// RemindersUseDefault mirrors the remote reminder configuration;
	// managed entries always set it to false.
	RemindersUseDefault bool
}

// OpKind identifies one remote mutation type.
type OpKind string

const (
	OpInsert OpKind = "insert"
	OpUpdate OpKind = "update"
	OpDelete OpKind = "delete"
)

// OpResult reports the outcome of a single attempted remote operation.
// Failures are collected, not raised: the next scheduled run retries
// naturally through the recomputed diff.
type OpResult struct {
	Kind OpKind
	ID   string
	Err  error
}

// Plan is the classified diff between desired and observed state.
//
// Partition invariant: every identifier present in either map lands in
// exactly one of Inserts, Updates, Deletes, Unchanged or SkippedForeign.
type Plan struct {
	Inserts []DesiredEntry
	Updates []DesiredEntry
	Deletes []string

	// Unchanged counts ids present on both sides with no textual drift;
	// they get no API write at all.
	Unchanged int

	// SkippedForeign counts remote entries absent from the desired set
	// that failed the ownership test and were left untouched.
	SkippedForeign int
}

// Empty reports whether the plan requires no remote mutation.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Updates) == 0 && len(p.Deletes) == 0
}

// Total returns the number of remote operations the plan will submit.
func (p Plan) Total() int {
	return len(p.Inserts) + len(p.Updates) + len(p.Deletes)
}
