package feed

import (
	"testing"
	"time"
)

func TestExpandPassthrough(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	events := []Event{{
		Title:    "TP R107",
		Notes:    "R107",
		Location: "B12",
		Start:    start,
		End:      start.Add(90 * time.Minute),
	}}

	sessions := Expand(events, now, 30)
	if len(sessions) != 1 {
		t.Fatalf("got %d sessions, want 1", len(sessions))
	}
	s := sessions[0]
	if s.Title != "TP R107" || s.Location != "B12" || !s.Start.Equal(start) {
		t.Errorf("session = %+v", s)
	}
}

func TestExpandWeeklyRecurrence(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	events := []Event{{
		Title:    "TD R103",
		Start:    start,
		End:      start.Add(90 * time.Minute),
		RawRRule: "FREQ=WEEKLY;COUNT=3",
	}}

	sessions := Expand(events, now, 60)
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3 weekly occurrences", len(sessions))
	}
	for i, s := range sessions {
		wantStart := start.AddDate(0, 0, 7*i)
		if !s.Start.Equal(wantStart) {
			t.Errorf("occurrence %d starts %v, want %v", i, s.Start, wantStart)
		}
		if got := s.End.Sub(s.Start); got != 90*time.Minute {
			t.Errorf("occurrence %d duration = %v, want 90m", i, got)
		}
	}
}

func TestExpandHonorsExDates(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	events := []Event{{
		Title:    "TD R103",
		Start:    start,
		End:      start.Add(90 * time.Minute),
		RawRRule: "FREQ=WEEKLY;COUNT=3",
		ExDates:  []time.Time{start.AddDate(0, 0, 7)},
	}}

	sessions := Expand(events, now, 60)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2 (one excluded)", len(sessions))
	}
	for _, s := range sessions {
		if s.Start.Equal(start.AddDate(0, 0, 7)) {
			t.Error("excluded occurrence survived expansion")
		}
	}
}

func TestExpandHorizonBound(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	events := []Event{{
		Title:    "TD R103",
		Start:    start,
		End:      start.Add(90 * time.Minute),
		RawRRule: "FREQ=WEEKLY", // unbounded
	}}

	sessions := Expand(events, now, 14)
	// Jan 5, 12, 19 fall inside [Jan 3, Jan 18]; the 19th does not.
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2 within the horizon", len(sessions))
	}
}

func TestExpandDropsInvalidRRule(t *testing.T) {
	now := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	events := []Event{
		{Title: "broken", Start: start, End: start.Add(time.Hour), RawRRule: "FREQ=BOGUS"},
		{Title: "fine", Start: start, End: start.Add(time.Hour)},
	}

	sessions := Expand(events, now, 30)
	if len(sessions) != 1 || sessions[0].Title != "fine" {
		t.Fatalf("sessions = %+v, want only the valid event", sessions)
	}
}
