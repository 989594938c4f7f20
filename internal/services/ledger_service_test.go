package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"donoboard/internal/core"
	"donoboard/internal/leaderboard"
	"donoboard/internal/storage"
)

var jan15 = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T, now time.Time) (*LedgerService, *storage.MemoryStore, *leaderboard.Projector) {
	t.Helper()

	clock := func() time.Time { return now }
	store := storage.NewMemoryStore()
	proj := leaderboard.NewProjector(store, clock)
	return NewLedgerService(store, proj, clock), store, proj
}

func TestLedgerService_RecordContribution(t *testing.T) {
	svc, store, _ := newTestLedger(t, jan15)
	ctx := context.Background()

	t.Run("totals accumulate per entrant", func(t *testing.T) {
		amounts := []int64{50000, 20000, 1000}
		var sum int64
		for _, amt := range amounts {
			applied, err := svc.RecordContribution(ctx, core.ContributionEvent{
				ActorID:       "u1",
				DisplayName:   "alice",
				RawAmountText: "Rp " + core.FormatAmount(amt),
			})
			if err != nil {
				t.Fatalf("RecordContribution: %v", err)
			}
			if !applied {
				t.Fatal("contribution was not applied")
			}
			sum += amt
		}

		top, _ := store.TopAllTime(ctx, 10)
		if len(top) != 1 || top[0].Total != sum {
			t.Errorf("all-time rows = %+v, want one row with total %d", top, sum)
		}
		monthly, _ := store.TopMonthly(ctx, "2024-01", 10)
		if len(monthly) != 1 || monthly[0].Total != sum {
			t.Errorf("monthly rows = %+v, want one row with total %d", monthly, sum)
		}
	})

	t.Run("unparsable text is a silent no-op", func(t *testing.T) {
		before, _ := store.TopAllTime(ctx, 10)

		applied, err := svc.RecordContribution(ctx, core.ContributionEvent{
			ActorID:       "u2",
			DisplayName:   "bob",
			RawAmountText: "makasih semuanya!",
		})
		if err != nil {
			t.Fatalf("RecordContribution: %v", err)
		}
		if applied {
			t.Error("unparsable text was applied")
		}

		after, _ := store.TopAllTime(ctx, 10)
		if len(after) != len(before) {
			t.Errorf("silent reject changed state: %+v -> %+v", before, after)
		}
	})
}

func TestLedgerService_AdminAdd(t *testing.T) {
	svc, store, _ := newTestLedger(t, jan15)
	ctx := context.Background()

	if err := svc.AdminAdd(ctx, "u1", "alice", 50000); err != nil {
		t.Fatalf("AdminAdd: %v", err)
	}

	for _, amount := range []int64{0, -100} {
		if err := svc.AdminAdd(ctx, "u1", "alice", amount); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("AdminAdd(%d) = %v, want ErrInvalidAmount", amount, err)
		}
	}

	top, _ := store.TopAllTime(ctx, 10)
	if len(top) != 1 || top[0].Total != 50000 {
		t.Errorf("rows = %+v, want one row with total 50000", top)
	}
}

func TestLedgerService_AdminSubtract(t *testing.T) {
	svc, store, _ := newTestLedger(t, jan15)
	ctx := context.Background()

	if err := svc.AdminAdd(ctx, "u1", "alice", 100); err != nil {
		t.Fatal(err)
	}

	t.Run("invalid amount fails loudly", func(t *testing.T) {
		if err := svc.AdminSubtract(ctx, "u1", "alice", 0); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("AdminSubtract(0) = %v, want ErrInvalidAmount", err)
		}
	})

	t.Run("clamps at zero", func(t *testing.T) {
		if err := svc.AdminSubtract(ctx, "u1", "alice", 150); err != nil {
			t.Fatalf("AdminSubtract: %v", err)
		}
		top, _ := store.TopAllTime(ctx, 10)
		if len(top) != 1 || top[0].Total != 0 {
			t.Errorf("rows = %+v, want clamped total 0", top)
		}
	})

	t.Run("no ghost rows for unknown entrants", func(t *testing.T) {
		if err := svc.AdminSubtract(ctx, "ghost", "ghost", 50); err != nil {
			t.Fatalf("AdminSubtract: %v", err)
		}
		top, _ := store.TopAllTime(ctx, 10)
		for _, row := range top {
			if row.ID == "ghost" {
				t.Errorf("subtraction materialized row %+v", row)
			}
		}
	})
}

func TestLedgerService_ResetEntrant(t *testing.T) {
	svc, store, _ := newTestLedger(t, jan15)
	ctx := context.Background()

	if err := svc.AdminAdd(ctx, "u1", "alice", 100); err != nil {
		t.Fatal(err)
	}
	if err := svc.AdminAdd(ctx, "u2", "bob", 100); err != nil {
		t.Fatal(err)
	}

	if err := svc.ResetEntrant(ctx, "u1"); err != nil {
		t.Fatalf("ResetEntrant: %v", err)
	}
	if err := svc.ResetEntrant(ctx, "u1"); err != nil {
		t.Fatalf("ResetEntrant repeat: %v", err)
	}

	top, _ := store.TopAllTime(ctx, 10)
	if len(top) != 1 || top[0].ID != "u2" {
		t.Errorf("rows = %+v, want only u2", top)
	}
}

func TestLedgerService_ResetAll(t *testing.T) {
	svc, _, proj := newTestLedger(t, jan15)
	ctx := context.Background()

	if err := svc.AdminAdd(ctx, "u1", "alice", 100); err != nil {
		t.Fatal(err)
	}
	if snap, _ := proj.AllTime(ctx, false); snap == nil {
		t.Fatal("baseline projection was a no-op")
	}

	if err := svc.ResetAll(ctx); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}

	snap, err := proj.AllTime(ctx, false)
	if err != nil {
		t.Fatal(err)
	}
	if snap == nil {
		t.Fatal("projection after ResetAll was a no-op, want empty snapshot")
	}
	if len(snap.Entries) != 0 {
		t.Errorf("entries after reset = %+v, want none", snap.Entries)
	}

	// Repopulates cleanly from zero.
	if err := svc.AdminAdd(ctx, "u1", "alice", 42); err != nil {
		t.Fatal(err)
	}
	snap, _ = proj.AllTime(ctx, false)
	if snap == nil || len(snap.Entries) != 1 || snap.Entries[0].Total != 42 {
		t.Errorf("snapshot after repopulation = %+v, want one entry with total 42", snap)
	}
}

func TestLedgerService_PruneStaleMonths(t *testing.T) {
	ctx := context.Background()

	t.Run("empty monthly table never rolls over", func(t *testing.T) {
		svc, _, _ := newTestLedger(t, jan15)
		rolled, err := svc.PruneStaleMonths(ctx)
		if err != nil {
			t.Fatalf("PruneStaleMonths: %v", err)
		}
		if rolled {
			t.Error("rollover fired with empty monthly table")
		}
	})

	t.Run("current month is a no-op", func(t *testing.T) {
		svc, _, _ := newTestLedger(t, jan15)
		if err := svc.AdminAdd(ctx, "u1", "alice", 100); err != nil {
			t.Fatal(err)
		}
		rolled, err := svc.PruneStaleMonths(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if rolled {
			t.Error("rollover fired while latest month is current")
		}
	})

	t.Run("stale month purges and invalidates the view", func(t *testing.T) {
		now := jan15
		clock := func() time.Time { return now }
		store := storage.NewMemoryStore()
		proj := leaderboard.NewProjector(store, clock)
		svc := NewLedgerService(store, proj, clock)

		if err := svc.AdminAdd(ctx, "u1", "alice", 100); err != nil {
			t.Fatal(err)
		}
		if snap, _ := proj.Monthly(ctx, false); snap == nil {
			t.Fatal("baseline monthly projection was a no-op")
		}

		// The calendar moves to February; a fresh row lands in the new month.
		now = time.Date(2024, time.February, 1, 0, 30, 0, 0, time.UTC)
		if err := svc.AdminAdd(ctx, "u2", "bob", 200); err != nil {
			t.Fatal(err)
		}

		rolled, err := svc.PruneStaleMonths(ctx)
		if err != nil {
			t.Fatalf("PruneStaleMonths: %v", err)
		}
		if !rolled {
			t.Fatal("rollover did not fire on stale month")
		}

		if rows, _ := store.TopMonthly(ctx, "2024-01", 10); len(rows) != 0 {
			t.Errorf("2024-01 rows survived the purge: %+v", rows)
		}
		rows, _ := store.TopMonthly(ctx, "2024-02", 10)
		if len(rows) != 1 || rows[0].ID != "u2" {
			t.Errorf("2024-02 rows = %+v, want untouched u2", rows)
		}

		// All-time history is retained across the rollover.
		top, _ := store.TopAllTime(ctx, 10)
		if len(top) != 2 {
			t.Errorf("all-time rows = %+v, want both entrants", top)
		}

		// Monthly cache was invalidated, so the new month gets published.
		snap, _ := proj.Monthly(ctx, false)
		if snap == nil {
			t.Fatal("monthly projection after rollover was a no-op")
		}
		if snap.Month != "2024-02" || len(snap.Entries) != 1 {
			t.Errorf("snapshot after rollover = %+v, want one 2024-02 entry", snap)
		}
	})
}

func TestLedgerService_DisplayNameRefresh(t *testing.T) {
	svc, store, _ := newTestLedger(t, jan15)
	ctx := context.Background()

	if err := svc.AdminAdd(ctx, "u1", "old-name", 100); err != nil {
		t.Fatal(err)
	}
	if err := svc.AdminSubtract(ctx, "u1", "new-name", 10); err != nil {
		t.Fatal(err)
	}

	top, _ := store.TopAllTime(ctx, 10)
	if len(top) != 1 || top[0].DisplayName != "new-name" {
		t.Errorf("rows = %+v, want refreshed display name", top)
	}
}
