// Command hubctl runs administrative jobs against the relational store.
//
//	hubctl cleanup-notifications --days=30 [--dry-run]
//	hubctl seed-notifications --username=<name> [--count=5]
//	hubctl remind-events [--days-ahead=1]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/internal/repositories"
	"github.com/campushub/backend/pkg/config"
	"github.com/campushub/backend/pkg/logger"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

const usage = `usage: hubctl <command> [flags]

commands:
  cleanup-notifications   delete read notifications older than --days
  seed-notifications      create test notifications for --username
  remind-events           notify registrants of events --days-ahead from today
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg := config.Load()
	logger.NewLogger(cfg.Env, cfg.LogLevel)

	var cmd func(context.Context, *gorm.DB, *config.Config, []string, io.Writer) error
	switch args[0] {
	case "cleanup-notifications":
		cmd = cleanupNotifications
	case "seed-notifications":
		cmd = seedNotifications
	case "remind-events":
		cmd = remindEvents
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}

	db, err := config.InitPostgres(cfg)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := cmd(ctx, db, cfg, args[1:], stdout); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func cleanupNotifications(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("cleanup-notifications", pflag.ContinueOnError)
	days := fs.Int("days", cfg.Notify.RetentionDays, "Delete read notifications older than this many days")
	dryRun := fs.Bool("dry-run", false, "Show what would be deleted without actually deleting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *days < 0 {
		return fmt.Errorf("--days must be zero or positive, got %d", *days)
	}

	sweeper := notify.NewSweeper(repositories.NewPostgresNotificationRepository(db))
	report, err := sweeper.Sweep(ctx, *days, *dryRun)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, formatSweepReport(report))
	return nil
}

func formatSweepReport(r notify.SweepReport) string {
	switch {
	case r.DryRun:
		return fmt.Sprintf("DRY RUN: Would delete %d read notifications older than %d days", r.Matched, r.Days)
	case r.Matched == 0:
		return fmt.Sprintf("No read notifications older than %d days found", r.Days)
	default:
		return fmt.Sprintf("Successfully deleted %d read notifications older than %d days", r.Deleted, r.Days)
	}
}

func seedNotifications(ctx context.Context, db *gorm.DB, _ *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("seed-notifications", pflag.ContinueOnError)
	username := fs.String("username", "", "Username of the recipient (required)")
	count := fs.Int("count", 5, "Number of test notifications to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("--username is required")
	}

	seeder := notify.NewSeeder(repositories.NewPostgresUserRepository(db), repositories.NewPostgresNotificationRepository(db))
	created, err := seeder.Seed(ctx, *username, *count)
	if errors.Is(err, notify.ErrUnknownUser) {
		return fmt.Errorf("User %q does not exist", *username)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Successfully created %d test notifications for %s\n", created, *username)
	return nil
}

func remindEvents(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("remind-events", pflag.ContinueOnError)
	daysAhead := fs.Int("days-ahead", 1, "Remind registrants of events this many days from today")
	if err := fs.Parse(args); err != nil {
		return err
	}

	engine := notify.NewEngine(
		repositories.NewPostgresNotificationRepository(db),
		repositories.NewPostgresUserRepository(db),
		cfg.Notify,
	)
	reminder := notify.NewReminder(repositories.NewPostgresEventRepository(db), engine)
	reminded, err := reminder.RemindUpcoming(ctx, *daysAhead)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Sent reminders for %d events\n", reminded)
	return nil
}
