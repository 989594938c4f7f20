package leaderboard

import (
	"context"
	"testing"
	"time"

	"donoboard/internal/core"
	"donoboard/internal/storage"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var jan15 = time.Date(2024, time.January, 15, 10, 0, 0, 0, time.UTC)

func TestProjector_AllTimeDedup(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01")

	snap, err := proj.AllTime(ctx, false)
	if err != nil {
		t.Fatalf("AllTime: %v", err)
	}
	if snap == nil {
		t.Fatal("first projection returned no-op, want snapshot")
	}
	if len(snap.Entries) != 1 || snap.Entries[0].Rank != 1 {
		t.Fatalf("entries = %+v, want one rank-1 entry", snap.Entries)
	}

	// No intervening mutation: second call is a no-op.
	snap, err = proj.AllTime(ctx, false)
	if err != nil {
		t.Fatalf("AllTime repeat: %v", err)
	}
	if snap != nil {
		t.Errorf("second projection = %+v, want no-op", snap)
	}
}

func TestProjector_TotalOnlyChangeIsSkipped(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 1000, "2024-01")
	store.ApplyAdd(ctx, "u2", "bob", 100, "2024-01")

	if snap, _ := proj.AllTime(ctx, false); snap == nil {
		t.Fatal("baseline projection was a no-op")
	}

	// Bob gains but stays below Alice: membership and order unchanged.
	store.ApplyAdd(ctx, "u2", "bob", 200, "2024-01")
	if snap, _ := proj.AllTime(ctx, false); snap != nil {
		t.Errorf("total-only change republished: %+v", snap)
	}

	// Bob overtakes Alice: the sequence differs, so a snapshot comes out.
	store.ApplyAdd(ctx, "u2", "bob", 5000, "2024-01")
	snap, _ := proj.AllTime(ctx, false)
	if snap == nil {
		t.Fatal("reorder was not detected")
	}
	if snap.Entries[0].DisplayName != "bob" {
		t.Errorf("top entry = %+v, want bob", snap.Entries[0])
	}
}

func TestProjector_ForceBypassesDedup(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01")

	if snap, _ := proj.AllTime(ctx, false); snap == nil {
		t.Fatal("baseline projection was a no-op")
	}
	snap, err := proj.AllTime(ctx, true)
	if err != nil {
		t.Fatalf("forced AllTime: %v", err)
	}
	if snap == nil {
		t.Fatal("forced projection returned no-op")
	}
	// Force also rebaselines: an unforced call right after is a no-op again.
	if snap, _ := proj.AllTime(ctx, false); snap != nil {
		t.Errorf("projection after force republished: %+v", snap)
	}
}

func TestProjector_MonthlyUsesCurrentMonth(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 100, "2023-12")
	store.ApplyAdd(ctx, "u2", "bob", 100, "2024-01")

	snap, err := proj.Monthly(ctx, false)
	if err != nil {
		t.Fatalf("Monthly: %v", err)
	}
	if snap == nil {
		t.Fatal("monthly projection was a no-op")
	}
	if snap.Month != "2024-01" {
		t.Errorf("month = %q, want 2024-01", snap.Month)
	}
	if len(snap.Entries) != 1 || snap.Entries[0].DisplayName != "bob" {
		t.Errorf("entries = %+v, want only bob", snap.Entries)
	}
}

func TestProjector_InvalidateMonthly(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01")
	if snap, _ := proj.Monthly(ctx, false); snap == nil {
		t.Fatal("baseline projection was a no-op")
	}

	proj.InvalidateMonthly()

	snap, _ := proj.Monthly(ctx, false)
	if snap == nil {
		t.Error("projection after invalidation was a no-op")
	}
}

func TestProjector_ResetThenEmptySnapshot(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01")
	if snap, _ := proj.AllTime(ctx, false); snap == nil {
		t.Fatal("baseline projection was a no-op")
	}

	store.Truncate(ctx)
	proj.Reset()

	snap, err := proj.AllTime(ctx, false)
	if err != nil {
		t.Fatalf("AllTime after reset: %v", err)
	}
	if snap == nil {
		t.Fatal("projection after reset was a no-op, want empty snapshot")
	}
	if len(snap.Entries) != 0 {
		t.Errorf("entries = %+v, want none", snap.Entries)
	}

	// Re-population from zero works and publishes again.
	store.ApplyAdd(ctx, "u1", "alice", 50, "2024-01")
	snap, _ = proj.AllTime(ctx, false)
	if snap == nil || len(snap.Entries) != 1 {
		t.Errorf("snapshot after re-population = %+v, want one entry", snap)
	}
}

func TestProjector_MedalsAndRanks(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	amounts := []int64{500, 400, 300, 200, 100}
	for i, amt := range amounts {
		id := string(rune('a' + i))
		store.ApplyAdd(ctx, id, "user-"+id, amt, "2024-01")
	}

	snap, _ := proj.AllTime(ctx, false)
	if snap == nil {
		t.Fatal("projection was a no-op")
	}
	wantMedals := []string{"🥇", "🥈", "🥉", "", ""}
	for i, entry := range snap.Entries {
		if entry.Rank != i+1 {
			t.Errorf("entry %d rank = %d, want %d", i, entry.Rank, i+1)
		}
		if entry.Medal != wantMedals[i] {
			t.Errorf("rank %d medal = %q, want %q", entry.Rank, entry.Medal, wantMedals[i])
		}
	}
}

func TestProjector_TieBreakByID(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	// A contributes 50000 then 20000, B contributes 70000: both end at 70000.
	store.ApplyAdd(ctx, "userA", "A", 50000, "2024-01")
	store.ApplyAdd(ctx, "userB", "B", 70000, "2024-01")
	store.ApplyAdd(ctx, "userA", "A", 20000, "2024-01")

	snap, _ := proj.AllTime(ctx, false)
	if snap == nil {
		t.Fatal("projection was a no-op")
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("entries = %+v, want two", snap.Entries)
	}
	// Equal totals order by ascending id: userA before userB.
	if snap.Entries[0].DisplayName != "A" || snap.Entries[1].DisplayName != "B" {
		t.Errorf("tie order = [%s, %s], want [A, B]",
			snap.Entries[0].DisplayName, snap.Entries[1].DisplayName)
	}
	if snap.Entries[0].Total != 70000 || snap.Entries[1].Total != 70000 {
		t.Errorf("totals = [%d, %d], want [70000, 70000]",
			snap.Entries[0].Total, snap.Entries[1].Total)
	}
}

func TestProjector_TopNCutoff(t *testing.T) {
	store := storage.NewMemoryStore()
	proj := NewProjector(store, fixedClock(jan15))
	ctx := context.Background()

	for i := 0; i < core.TopMonthlySize+5; i++ {
		id := rune('a' + i)
		store.ApplyAdd(ctx, string(id), string(id), int64(1000-i), "2024-01")
	}

	snap, _ := proj.Monthly(ctx, false)
	if snap == nil {
		t.Fatal("projection was a no-op")
	}
	if len(snap.Entries) != core.TopMonthlySize {
		t.Errorf("monthly entries = %d, want %d", len(snap.Entries), core.TopMonthlySize)
	}
}
