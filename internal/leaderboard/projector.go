// Package leaderboard computes ranked top-N views of the ledger and decides
// whether a re-render is warranted.
package leaderboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"donoboard/internal/core"
	"donoboard/internal/storage"
)

// Projector owns the published-view cache: the id sequence of the last board
// it handed out per kind. Only the identity sequence is compared, never the
// totals, so amount changes that don't reorder the visible board are skipped.
// The cache is process state; it resets on start, on a full ledger reset and
// when a rollover purges the monthly table.
type Projector struct {
	mu    sync.Mutex
	store storage.Store
	now   func() time.Time

	allTime publishedView
	monthly publishedView
}

// publishedView distinguishes "never published" from "published an empty
// board": after a reset the next projection must produce a snapshot even if
// both sequences are empty.
type publishedView struct {
	published bool
	ids       []string
}

func NewProjector(store storage.Store, now func() time.Time) *Projector {
	if now == nil {
		now = time.Now
	}
	return &Projector{store: store, now: now}
}

// AllTime projects the top-30 all-time board. A nil snapshot with nil error
// means the board is unchanged since the last publication. force bypasses the
// comparison but still rebaselines the cache.
func (p *Projector) AllTime(ctx context.Context, force bool) (*core.Snapshot, error) {
	rows, err := p.store.TopAllTime(ctx, core.TopAllTimeSize)
	if err != nil {
		return nil, fmt.Errorf("project all-time board: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.allTime.published && sameSequence(p.allTime.ids, rows) {
		return nil, nil
	}
	p.allTime = capture(rows)
	return p.buildSnapshot(core.AllTimeBoard, "", rows), nil
}

// Monthly projects the top-10 board of the current calendar month.
func (p *Projector) Monthly(ctx context.Context, force bool) (*core.Snapshot, error) {
	month := core.MonthKey(p.now())
	rows, err := p.store.TopMonthly(ctx, month, core.TopMonthlySize)
	if err != nil {
		return nil, fmt.Errorf("project monthly board: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !force && p.monthly.published && sameSequence(p.monthly.ids, rows) {
		return nil, nil
	}
	p.monthly = capture(rows)
	return p.buildSnapshot(core.MonthlyBoard, month, rows), nil
}

// InvalidateMonthly drops the monthly half of the cache. Called after a
// rollover purge so the fresh month always gets one publication.
func (p *Projector) InvalidateMonthly() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.monthly = publishedView{}
}

// Reset drops both halves of the cache. Called after a full ledger reset.
func (p *Projector) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.allTime = publishedView{}
	p.monthly = publishedView{}
}

func (p *Projector) buildSnapshot(kind core.SnapshotKind, month string, rows []core.AggregateRow) *core.Snapshot {
	entries := make([]core.Entry, len(rows))
	for i, row := range rows {
		rank := i + 1
		entries[i] = core.Entry{
			Rank:        rank,
			Medal:       core.RankMedal(rank),
			DisplayName: row.DisplayName,
			Total:       row.Total,
		}
	}
	return &core.Snapshot{
		Kind:        kind,
		Month:       month,
		GeneratedAt: p.now(),
		Entries:     entries,
	}
}

func capture(rows []core.AggregateRow) publishedView {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return publishedView{published: true, ids: ids}
}

func sameSequence(ids []string, rows []core.AggregateRow) bool {
	if len(ids) != len(rows) {
		return false
	}
	for i, row := range rows {
		if ids[i] != row.ID {
			return false
		}
	}
	return true
}
