package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// NOTE: This tool runs headless under cron/systemd timers, so configuration
// is environment-driven. Secrets (feed credentials) stay out of files and
// out of process arguments.

// Config is the full runtime configuration of one sync run.
type Config struct {
	// FeedURL is the authenticated ICS endpoint of the school portal.
	FeedURL string

	// FeedUser / FeedPass are the HTTP Basic Auth credentials for FeedURL.
	FeedUser string
	FeedPass string

	// CalendarID is the target Google calendar.
	CalendarID string

	// CredentialsFile is the path to the Google service-account JSON key.
	CredentialsFile string

	// SubjectsFile optionally overrides the embedded classification table.
	SubjectsFile string

	// ShowHackCampus toggles inclusion of the recurring "Hack eCampus"
	// sessions that clutter the feed outside hackathon season.
	ShowHackCampus bool

	// AlarmMinutes is the wake-up reminder lead time attached to the first
	// session of each day.
	AlarmMinutes int64

	// BatchSize caps how many mutations are submitted per batch.
	BatchSize int

	// HorizonDays bounds recurrence expansion of the feed.
	HorizonDays int

	// LegacyDelete enables the identifier-shape fallback that recognizes
	// entries created by pre-marker versions of this tool. Turn it off
	// once no such entries remain on the calendar.
	LegacyDelete bool

	// UnknownReport is the path of the unknown-subject-codes side file.
	// Empty disables the report.
	UnknownReport string
}

// FromEnv builds a Config from ENTSYNC_* environment variables and fills in
// defaults. Call Validate before using the result.
func FromEnv() *Config {
	cfg := &Config{
		FeedURL:         os.Getenv("ENTSYNC_ICS_URL"),
		FeedUser:        os.Getenv("ENTSYNC_ICS_USER"),
		FeedPass:        os.Getenv("ENTSYNC_ICS_PASS"),
		CalendarID:      os.Getenv("ENTSYNC_CALENDAR_ID"),
		CredentialsFile: os.Getenv("ENTSYNC_GOOGLE_CREDENTIALS"),
		SubjectsFile:    os.Getenv("ENTSYNC_SUBJECTS_FILE"),
		ShowHackCampus:  envBool("ENTSYNC_SHOW_HACK_CAMPUS", true),
		AlarmMinutes:    envInt64("ENTSYNC_ALARM_MINUTES", 0),
		BatchSize:       int(envInt64("ENTSYNC_BATCH_SIZE", 0)),
		HorizonDays:     int(envInt64("ENTSYNC_HORIZON_DAYS", 0)),
		LegacyDelete:    envBool("ENTSYNC_LEGACY_DELETE", true),
		UnknownReport:   os.Getenv("ENTSYNC_UNKNOWN_REPORT"),
	}
	cfg.Normalize()
	return cfg
}

// Normalize fills in missing/zero values with sensible defaults so that a
// minimal environment still behaves correctly.
func (c *Config) Normalize() {
	if c.CredentialsFile == "" {
		c.CredentialsFile = "credentials.json"
	}
	if c.AlarmMinutes <= 0 {
		c.AlarmMinutes = 60
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 120
	}
}

// Validate returns an error naming every missing required setting, so one
// failed run reports the whole problem instead of one variable at a time.
func (c *Config) Validate() error {
	var missing []string
	if c.FeedURL == "" {
		missing = append(missing, "ENTSYNC_ICS_URL")
	}
	if c.FeedUser == "" {
		missing = append(missing, "ENTSYNC_ICS_USER")
	}
	if c.FeedPass == "" {
		missing = append(missing, "ENTSYNC_ICS_PASS")
	}
	if c.CalendarID == "" {
		missing = append(missing, "ENTSYNC_CALENDAR_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if c.BatchSize > 50 {
		return errors.New("ENTSYNC_BATCH_SIZE exceeds the Calendar API batch limit (50)")
	}
	return nil
}

// envBool parses common truthy spellings; anything else yields def.
func envBool(key string, def bool) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch v {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def
	}
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
