package storage

import (
	"context"
	"testing"
)

// The memory store must order and clamp exactly like the sqlite repository so
// tests and the memory backend see the same boards.

func TestMemoryStore_AddSubtractClamp(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01"); err != nil {
		t.Fatal(err)
	}
	if err := store.ApplySubtract(ctx, "u1", "alice", 150, "2024-01"); err != nil {
		t.Fatal(err)
	}

	top, _ := store.TopAllTime(ctx, 10)
	if len(top) != 1 || top[0].Total != 0 {
		t.Errorf("rows = %+v, want one clamped row", top)
	}

	if err := store.ApplySubtract(ctx, "ghost", "ghost", 10, "2024-01"); err != nil {
		t.Fatal(err)
	}
	top, _ = store.TopAllTime(ctx, 10)
	if len(top) != 1 {
		t.Errorf("subtract materialized a row: %+v", top)
	}
}

func TestMemoryStore_OrderingMatchesSQLite(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, row := range []struct {
		id     string
		amount int64
	}{{"b", 70000}, {"a", 70000}, {"c", 90000}} {
		if err := store.ApplyAdd(ctx, row.id, row.id, row.amount, "2024-01"); err != nil {
			t.Fatal(err)
		}
	}

	top, _ := store.TopAllTime(ctx, 10)
	want := []string{"c", "a", "b"}
	for i := range want {
		if top[i].ID != want[i] {
			t.Fatalf("order = %+v, want ids %v", top, want)
		}
	}
}

func TestMemoryStore_PurgeAndLatestMonth(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, ok, _ := store.LatestMonth(ctx); ok {
		t.Error("empty store reported a latest month")
	}

	store.ApplyAdd(ctx, "u1", "alice", 100, "2024-01")
	store.ApplyAdd(ctx, "u2", "bob", 100, "2024-02")

	month, ok, _ := store.LatestMonth(ctx)
	if !ok || month != "2024-02" {
		t.Errorf("LatestMonth = %q/%v, want 2024-02/true", month, ok)
	}

	purged, _ := store.PurgeStaleMonths(ctx, "2024-02")
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}
	if rows, _ := store.TopMonthly(ctx, "2024-01", 10); len(rows) != 0 {
		t.Errorf("stale rows remain: %+v", rows)
	}
	if rows, _ := store.TopMonthly(ctx, "2024-02", 10); len(rows) != 1 {
		t.Errorf("fresh rows = %+v, want one", rows)
	}
}
