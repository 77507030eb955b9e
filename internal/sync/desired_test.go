package sync

import (
	"strings"
	"testing"
	"time"

	"entsync/internal/model"
)

func TestBuildDesiredEndAfterNowFilter(t *testing.T) {
	table := testTable(t)
	now := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	opts := Options{ShowHackCampus: true}

	past := session("TP R107", now.Add(-3*time.Hour))            // ended 07:30
	inProgress := session("TD R103", now.Add(-30*time.Minute))   // ends 10:00
	future := session("CM R101", now.Add(2*time.Hour))           // starts 11:00
	endsExactlyNow := session("TP R108", now.Add(-90*time.Minute)) // ends 09:00 sharp

	desired := BuildDesired([]model.Session{past, inProgress, future, endsExactlyNow}, table, opts, now, 60)

	if len(desired) != 2 {
		t.Fatalf("desired has %d entries, want 2 (in-progress + future)", len(desired))
	}

	summaries := make(map[string]bool)
	for _, e := range desired {
		summaries[e.Summary] = true
	}
	if !summaries["✏️ 🏢 Réseaux Locaux"] {
		t.Error("in-progress session missing from desired set")
	}
	if !summaries["🎤 🌐 Init. Réseaux"] {
		t.Error("future session missing from desired set")
	}
}

func TestBuildDesiredFirstOfDayReversedInput(t *testing.T) {
	table := testTable(t)
	now := time.Date(2026, 1, 4, 12, 0, 0, 0, time.UTC)
	opts := Options{ShowHackCampus: true}

	early := session("TP R107", time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	late := session("TD R103", time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC))

	// Deliberately reversed input order: sorting must still pick 08:00.
	desired := BuildDesired([]model.Session{late, early}, table, opts, now, 45)

	var earlyEntry, lateEntry *model.DesiredEntry
	for id := range desired {
		e := desired[id]
		switch e.Summary {
		case "💻 🐍 Prog. Fondamentaux":
			earlyEntry = &e
		case "✏️ 🏢 Réseaux Locaux":
			lateEntry = &e
		}
	}
	if earlyEntry == nil || lateEntry == nil {
		t.Fatalf("desired set incomplete: %+v", desired)
	}

	if !earlyEntry.FirstOfDay {
		t.Error("08:00 session should carry the wake-up alarm")
	}
	if earlyEntry.ReminderMinutes == nil || *earlyEntry.ReminderMinutes != 45 {
		t.Errorf("08:00 reminder = %v, want 45", earlyEntry.ReminderMinutes)
	}
	if !strings.HasPrefix(earlyEntry.Description, wakeBanner) {
		t.Errorf("08:00 description %q lacks wake banner", earlyEntry.Description)
	}

	if lateEntry.FirstOfDay {
		t.Error("10:00 session must not carry the wake-up alarm")
	}
	if lateEntry.ReminderMinutes != nil {
		t.Error("10:00 session must not carry a reminder override")
	}
	if strings.Contains(lateEntry.Description, wakeBanner) {
		t.Error("10:00 description must not carry the wake banner")
	}
}

func TestBuildDesiredFirstOfDayUniquePerDay(t *testing.T) {
	table := testTable(t)
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	opts := Options{ShowHackCampus: true}

	var sessions []model.Session
	for day := 5; day <= 7; day++ {
		for _, hour := range []int{14, 8, 10} { // shuffled within each day
			sessions = append(sessions, session("TP R107",
				time.Date(2026, 1, day, hour, 0, 0, 0, time.UTC)))
		}
	}

	desired := BuildDesired(sessions, table, opts, now, 60)
	if len(desired) != 9 {
		t.Fatalf("desired has %d entries, want 9", len(desired))
	}

	firstByDay := make(map[string]time.Time)
	for _, e := range desired {
		if !e.FirstOfDay {
			continue
		}
		day := e.Start.Format("2006-01-02")
		if prev, dup := firstByDay[day]; dup {
			t.Errorf("day %s has two first-of-day sessions (%v and %v)", day, prev, e.Start)
		}
		firstByDay[day] = e.Start
	}

	if len(firstByDay) != 3 {
		t.Fatalf("got first-of-day sessions on %d days, want 3", len(firstByDay))
	}
	for day, start := range firstByDay {
		if start.Hour() != 8 {
			t.Errorf("day %s first-of-day at %02d:00, want 08:00", day, start.Hour())
		}
	}
}

func TestBuildDesiredBannerWithoutNotes(t *testing.T) {
	table := testTable(t)
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)

	s := session("TP R107", time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC))
	desired := BuildDesired([]model.Session{s}, table, Options{ShowHackCampus: true}, now, 60)

	for _, e := range desired {
		if e.Description != wakeBanner {
			t.Errorf("Description = %q, want bare banner %q", e.Description, wakeBanner)
		}
	}
}

func TestBuildDesiredIdentifierReuse(t *testing.T) {
	// Same feed parsed twice must produce byte-identical keys, otherwise
	// every run would recreate the whole calendar.
	table := testTable(t)
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	opts := Options{ShowHackCampus: true}

	sessions := []model.Session{
		session("TP R107", time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)),
		session("TD R103", time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)),
	}

	a := BuildDesired(sessions, table, opts, now, 60)
	b := BuildDesired(sessions, table, opts, now, 60)

	if len(a) != len(b) {
		t.Fatalf("runs disagree on entry count: %d vs %d", len(a), len(b))
	}
	for id := range a {
		if _, ok := b[id]; !ok {
			t.Errorf("id %s present in first run only", id)
		}
	}
}
