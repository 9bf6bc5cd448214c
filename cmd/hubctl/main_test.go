package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/campushub/backend/internal/notify"
	"github.com/campushub/backend/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestFormatSweepReport(t *testing.T) {
	cutoff := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "DRY RUN: Would delete 1 read notifications older than 30 days",
		formatSweepReport(notify.SweepReport{Days: 30, Cutoff: cutoff, DryRun: true, Matched: 1}))
	assert.Equal(t, "No read notifications older than 30 days found",
		formatSweepReport(notify.SweepReport{Days: 30, Cutoff: cutoff}))
	assert.Equal(t, "Successfully deleted 4 read notifications older than 7 days",
		formatSweepReport(notify.SweepReport{Days: 7, Cutoff: cutoff, Matched: 4, Deleted: 4}))
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), nil, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "cleanup-notifications")
}

func TestCleanupNotifications_RejectsNegativeDays(t *testing.T) {
	var out bytes.Buffer
	err := cleanupNotifications(context.Background(), nil, &config.Config{}, []string{"--days=-1"}, &out)
	assert.EqualError(t, err, "--days must be zero or positive, got -1")
	assert.Empty(t, out.String())
}
