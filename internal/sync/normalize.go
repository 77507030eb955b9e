// Package sync implements the reconciliation core: it turns parsed feed
// sessions into a desired calendar state, compares it against the observed
// remote state, and classifies the difference into a minimal mutation plan.
//
// The package holds no state between runs. Identity is re-derived from
// session content on every run, so the remote calendar stays the only
// source of truth.
package sync

import (
	"strings"

	"entsync/internal/classify"
	"entsync/internal/model"
)

// Options are the feature toggles consumed by normalization. They are
// passed explicitly (not read from the environment) so the core stays
// testable with injected configurations.
type Options struct {
	// ShowHackCampus includes the recurring "Hack eCampus" sessions.
	ShowHackCampus bool
}

// Normalized is a session with its derived display summary and grouping key.
type Normalized struct {
	model.Session

	// Summary is the emoji-labeled display title. Deterministic for a
	// fixed (title, notes) and classification table; the diff relies on
	// that determinism for idempotence.
	Summary string

	// DayKey is the civil date (feed-local zone) of the session start,
	// used only for first-of-day grouping, never for identity.
	DayKey string
}

// Normalize derives the display form of one session, or reports false when
// the session should be discarded (empty title, or a filtered category).
func Normalize(s model.Session, table *classify.Table, opts Options) (Normalized, bool) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return Normalized{}, false
	}
	if !opts.ShowHackCampus && strings.Contains(strings.ToLower(title), "hack ecampus") {
		return Normalized{}, false
	}

	return Normalized{
		Session: s,
		Summary: table.Summary(title, s.Notes),
		DayKey:  s.Start.Format("2006-01-02"),
	}, true
}
