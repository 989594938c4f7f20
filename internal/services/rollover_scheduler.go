package services

import (
	"context"
	"log/slog"
	"time"
)

// RolloverScheduler drives the month-rollover check on a fixed cadence.
// Hourly is plenty: buckets are keyed by month, not by check time, so a late
// check only delays the purge, never mis-buckets a contribution.
type RolloverScheduler struct {
	ledger   *LedgerService
	interval time.Duration
}

func NewRolloverScheduler(ledger *LedgerService, interval time.Duration) *RolloverScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &RolloverScheduler{ledger: ledger, interval: interval}
}

// Run blocks until ctx is cancelled, checking once immediately and then on
// every tick. A failed check is logged and retried next tick.
func (r *RolloverScheduler) Run(ctx context.Context) error {
	if _, err := r.ledger.PruneStaleMonths(ctx); err != nil {
		slog.ErrorContext(ctx, "Startup rollover check failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Rollover scheduler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Rollover scheduler stopping", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := r.ledger.PruneStaleMonths(ctx); err != nil {
				slog.ErrorContext(ctx, "Rollover check failed", "error", err)
			}
		}
	}
}
