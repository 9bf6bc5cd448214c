package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campushub/backend/pkg/metrics"
	"go.uber.org/zap"
)

// RetentionStore is the slice of the notification repository the sweep needs.
type RetentionStore interface {
	CountReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ErrInvalidRetention rejects a negative window, which would put the cutoff
// in the future and match every read notification.
var ErrInvalidRetention = errors.New("retention days must not be negative")

// SweepReport describes one retention run.
type SweepReport struct {
	Days    int
	Cutoff  time.Time
	DryRun  bool
	Matched int64
	Deleted int64
}

// Sweeper removes read notifications older than a retention window.
// Unread notifications are never touched.
type Sweeper struct {
	store  RetentionStore
	now    func() time.Time
	logger *zap.Logger
}

func NewSweeper(store RetentionStore) *Sweeper {
	return &Sweeper{store: store, now: time.Now, logger: zap.L()}
}

func (s *Sweeper) Sweep(ctx context.Context, days int, dryRun bool) (SweepReport, error) {
	if days < 0 {
		return SweepReport{Days: days, DryRun: dryRun}, fmt.Errorf("%w: %d", ErrInvalidRetention, days)
	}
	report := SweepReport{
		Days:   days,
		Cutoff: s.now().AddDate(0, 0, -days),
		DryRun: dryRun,
	}

	matched, err := s.store.CountReadBefore(ctx, report.Cutoff)
	if err != nil {
		return report, err
	}
	report.Matched = matched
	if dryRun || matched == 0 {
		return report, nil
	}

	deleted, err := s.store.DeleteReadBefore(ctx, report.Cutoff)
	if err != nil {
		return report, err
	}
	report.Deleted = deleted
	metrics.AddRetentionDeleted(deleted)
	s.logger.Info("retention sweep finished",
		zap.Int("days", days),
		zap.Time("cutoff", report.Cutoff),
		zap.Int64("deleted", deleted))
	return report, nil
}
