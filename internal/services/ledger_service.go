package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"donoboard/internal/core"
	"donoboard/internal/leaderboard"
	"donoboard/internal/storage"
)

// LedgerService is the aggregation engine. It owns the single writer lock:
// every mutation and the rollover purge serialize here, so the two aggregate
// tables never see a partially applied operation.
type LedgerService struct {
	mu        sync.Mutex
	store     storage.Store
	projector *leaderboard.Projector
	now       func() time.Time
}

func NewLedgerService(store storage.Store, projector *leaderboard.Projector, now func() time.Time) *LedgerService {
	if now == nil {
		now = time.Now
	}
	return &LedgerService{
		store:     store,
		projector: projector,
		now:       now,
	}
}

// RecordContribution applies an ordinary contribution. The amount comes as
// free text; anything that doesn't parse to a positive integer is dropped
// silently and the returned bool is false. Arbitrary chat messages flow
// through this path, so a parse miss is not an error.
func (s *LedgerService) RecordContribution(ctx context.Context, ev core.ContributionEvent) (bool, error) {
	amount, ok := core.ParseContributionAmount(ev.RawAmountText)
	if !ok {
		slog.DebugContext(ctx, "Contribution text carried no amount, ignoring",
			"entrant_id", ev.ActorID)
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	month := core.MonthKey(s.now())
	if err := s.store.ApplyAdd(ctx, ev.ActorID, ev.DisplayName, amount, month); err != nil {
		return false, &core.StorageError{Op: "record contribution", Err: err}
	}

	slog.InfoContext(ctx, "Contribution recorded",
		"entrant_id", ev.ActorID, "amount", amount, "month", month)
	return true, nil
}

// AdminAdd credits an entrant. Same ledger semantics as RecordContribution
// but the amount is explicit and a bad one fails loudly.
func (s *LedgerService) AdminAdd(ctx context.Context, id, displayName string, amount int64) error {
	if err := core.ValidateAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	month := core.MonthKey(s.now())
	if err := s.store.ApplyAdd(ctx, id, displayName, amount, month); err != nil {
		return &core.StorageError{Op: "admin add", Err: err}
	}

	slog.InfoContext(ctx, "Admin addition applied",
		"entrant_id", id, "amount", amount, "month", month)
	return nil
}

// AdminSubtract debits an entrant. Both aggregates clamp at zero
// independently; a row that doesn't exist is not created.
func (s *LedgerService) AdminSubtract(ctx context.Context, id, displayName string, amount int64) error {
	if err := core.ValidateAmount(amount); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	month := core.MonthKey(s.now())
	if err := s.store.ApplySubtract(ctx, id, displayName, amount, month); err != nil {
		return &core.StorageError{Op: "admin subtract", Err: err}
	}

	slog.InfoContext(ctx, "Admin subtraction applied",
		"entrant_id", id, "amount", amount, "month", month)
	return nil
}

// ResetEntrant deletes every row for the entrant across both tables and all
// months. Idempotent.
func (s *LedgerService) ResetEntrant(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteEntrant(ctx, id); err != nil {
		return &core.StorageError{Op: "reset entrant", Err: err}
	}

	slog.InfoContext(ctx, "Entrant reset", "entrant_id", id)
	return nil
}

// ResetAll truncates both tables and clears the published-view cache so the
// next projection publishes an empty board.
func (s *LedgerService) ResetAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Truncate(ctx); err != nil {
		return &core.StorageError{Op: "reset all", Err: err}
	}
	s.projector.Reset()

	slog.InfoContext(ctx, "Ledger fully reset")
	return nil
}

// PruneStaleMonths is the rollover check: when the stored latest month no
// longer matches the wall-clock month, every stale monthly row is purged and
// the monthly view cache invalidated. An empty monthly table means there is
// nothing to roll over. Returns whether a purge happened.
func (s *LedgerService) PruneStaleMonths(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	latest, ok, err := s.store.LatestMonth(ctx)
	if err != nil {
		return false, &core.StorageError{Op: "read latest month", Err: err}
	}
	if !ok {
		return false, nil
	}

	current := core.MonthKey(s.now())
	if latest == current {
		return false, nil
	}

	purged, err := s.store.PurgeStaleMonths(ctx, current)
	if err != nil {
		return false, &core.StorageError{Op: "purge stale months", Err: err}
	}
	s.projector.InvalidateMonthly()

	slog.InfoContext(ctx, "Monthly board rolled over",
		"current_month", current, "previous_month", latest, "purged", purged)
	return true, nil
}
