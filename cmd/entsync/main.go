package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"entsync/internal/classify"
	"entsync/internal/config"
	"entsync/internal/feed"
	"entsync/internal/gcal"
	appLog "entsync/internal/log"
	"entsync/internal/model"
	"entsync/internal/report"
	syncer "entsync/internal/sync"
)

// flagConfig holds CLI flag values; everything else comes from ENTSYNC_*
// environment variables.
type flagConfig struct {
	schedule string
	subjects string
	dryRun   bool
}

func main() {
	flags := parseFlags()

	cfg := config.FromEnv()
	if flags.subjects != "" {
		cfg.SubjectsFile = flags.subjects
	}
	if err := cfg.Validate(); err != nil {
		appLog.Error("invalid configuration", err)
		os.Exit(1)
	}

	table, err := classify.Load(cfg.SubjectsFile)
	if err != nil {
		appLog.Error("failed to load classification table", err, "path", cfg.SubjectsFile)
		os.Exit(1)
	}

	appLog.Info("entsync starting",
		"calendar_id", cfg.CalendarID,
		"subjects", len(table.Subjects),
		"schedule", flags.schedule,
		"dry_run", flags.dryRun,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	if flags.schedule == "" {
		// One-shot mode: a single run's outcome is the process exit code.
		if err := run(ctx, cfg, table, flags.dryRun); err != nil {
			appLog.Error("sync run failed", err)
			os.Exit(1)
		}
		return
	}

	// Scheduled mode. SkipIfStillRunning guarantees no two runs race the
	// same calendar: the diff provides no locking, and concurrent runs
	// could both decide to insert the same session.
	clog := cronLogger{}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(clog)))
	_, err = c.AddFunc(flags.schedule, func() {
		if err := run(ctx, cfg, table, flags.dryRun); err != nil {
			appLog.Error("scheduled sync run failed", err)
		}
	})
	if err != nil {
		appLog.Error("invalid schedule expression", err, "schedule", flags.schedule)
		os.Exit(1)
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("entsync exiting")
}

// run performs one full reconciliation: fetch, classify, build desired
// state, list observed state, diff, apply.
func run(ctx context.Context, cfg *config.Config, table *classify.Table, dryRun bool) error {
	started := time.Now()
	now := started

	body, err := feed.NewFetcher().Fetch(ctx, cfg.FeedURL, cfg.FeedUser, cfg.FeedPass)
	if err != nil {
		return err
	}

	events, err := feed.Parse(body)
	if err != nil {
		return fmt.Errorf("feed parse: %w", err)
	}

	sessions := feed.Expand(events, now, cfg.HorizonDays)

	opts := syncer.Options{ShowHackCampus: cfg.ShowHackCampus}
	desired := syncer.BuildDesired(sessions, table, opts, now, cfg.AlarmMinutes)

	client, err := gcal.NewClient(ctx, cfg.CredentialsFile, cfg.CalendarID)
	if err != nil {
		return err
	}

	observed, err := client.ListUpcoming(ctx, now)
	if err != nil {
		return err
	}

	plan := syncer.Diff(desired, observed, cfg.LegacyDelete)
	appLog.Info("diff computed",
		"inserts", len(plan.Inserts),
		"updates", len(plan.Updates),
		"deletes", len(plan.Deletes),
		"unchanged", plan.Unchanged,
		"skipped_foreign", plan.SkippedForeign,
	)

	if dryRun {
		appLog.Info("dry run: no mutations applied", "pending_ops", plan.Total())
		return nil
	}

	var failed int
	if plan.Empty() {
		appLog.Info("calendar already up to date")
	} else {
		results := client.Apply(ctx, plan, cfg.BatchSize)
		failed = countFailures(results)
	}

	writeUnknownReport(cfg, table, sessions)

	appLog.Info("sync completed",
		"duration", time.Since(started).Round(time.Millisecond).String(),
		"operations", plan.Total(),
		"failed", failed,
	)
	return nil
}

func countFailures(results []model.OpResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// writeUnknownReport emits the diagnostic side file of unmatched subject
// codes. Best effort: a failure here never fails the run.
func writeUnknownReport(cfg *config.Config, table *classify.Table, sessions []model.Session) {
	if cfg.UnknownReport == "" {
		return
	}

	texts := make([]string, 0, len(sessions))
	for _, s := range sessions {
		texts = append(texts, s.Title+" "+s.Notes)
	}
	codes := table.UnknownCodes(texts...)
	if len(codes) > 0 {
		appLog.Warn("subject codes missing from table", "codes", len(codes))
	}

	if err := report.WriteUnknown(cfg.UnknownReport, codes); err != nil {
		appLog.Warn("failed to write unknown-codes report", "path", cfg.UnknownReport, "reason", err.Error())
	}
}

// cronLogger adapts the app logger to the cron.Logger interface.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.schedule, "schedule", "", "Cron expression for periodic runs (empty = run once and exit)")
	flag.StringVar(&cfg.subjects, "subjects", "", "Path to classification table YAML (overrides ENTSYNC_SUBJECTS_FILE)")
	flag.BoolVar(&cfg.dryRun, "dry-run", false, "Compute and log the diff without applying any mutation")

	flag.Parse()

	return cfg
}
