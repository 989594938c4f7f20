package storage

import (
	"context"
	"sort"
	"sync"

	"donoboard/internal/core"
)

// MemoryStore is an in-memory Store used by the memory backend and in tests.
// It mirrors the sqlite ordering exactly: total descending, id ascending.
type MemoryStore struct {
	mu      sync.RWMutex
	allTime map[string]*core.AggregateRow
	monthly map[monthlyKey]*core.AggregateRow
}

type monthlyKey struct {
	id    string
	month string
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		allTime: make(map[string]*core.AggregateRow),
		monthly: make(map[monthlyKey]*core.AggregateRow),
	}
}

// ApplyAdd implements Store.
func (s *MemoryStore) ApplyAdd(_ context.Context, id, displayName string, amount int64, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.allTime[id]; ok {
		row.Total += amount
		row.DisplayName = displayName
	} else {
		s.allTime[id] = &core.AggregateRow{ID: id, DisplayName: displayName, Total: amount}
	}

	key := monthlyKey{id: id, month: month}
	if row, ok := s.monthly[key]; ok {
		row.Total += amount
		row.DisplayName = displayName
	} else {
		s.monthly[key] = &core.AggregateRow{ID: id, DisplayName: displayName, Total: amount}
	}
	return nil
}

// ApplySubtract implements Store.
func (s *MemoryStore) ApplySubtract(_ context.Context, id, displayName string, amount int64, month string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row, ok := s.allTime[id]; ok {
		row.Total = max(row.Total-amount, 0)
		row.DisplayName = displayName
	}
	if row, ok := s.monthly[monthlyKey{id: id, month: month}]; ok {
		row.Total = max(row.Total-amount, 0)
		row.DisplayName = displayName
	}
	return nil
}

// DeleteEntrant implements Store.
func (s *MemoryStore) DeleteEntrant(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.allTime, id)
	for key := range s.monthly {
		if key.id == id {
			delete(s.monthly, key)
		}
	}
	return nil
}

// Truncate implements Store.
func (s *MemoryStore) Truncate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.allTime = make(map[string]*core.AggregateRow)
	s.monthly = make(map[monthlyKey]*core.AggregateRow)
	return nil
}

// TopAllTime implements Store.
func (s *MemoryStore) TopAllTime(_ context.Context, limit int) ([]core.AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]core.AggregateRow, 0, len(s.allTime))
	for _, row := range s.allTime {
		rows = append(rows, *row)
	}
	return topRows(rows, limit), nil
}

// TopMonthly implements Store.
func (s *MemoryStore) TopMonthly(_ context.Context, month string, limit int) ([]core.AggregateRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []core.AggregateRow
	for key, row := range s.monthly {
		if key.month == month {
			rows = append(rows, *row)
		}
	}
	return topRows(rows, limit), nil
}

// LatestMonth implements Store.
func (s *MemoryStore) LatestMonth(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := ""
	for key := range s.monthly {
		if key.month > latest {
			latest = key.month
		}
	}
	return latest, latest != "", nil
}

// PurgeStaleMonths implements Store.
func (s *MemoryStore) PurgeStaleMonths(_ context.Context, currentMonth string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var purged int64
	for key := range s.monthly {
		if key.month != currentMonth {
			delete(s.monthly, key)
			purged++
		}
	}
	return purged, nil
}

func (s *MemoryStore) Close() error { return nil }

func topRows(rows []core.AggregateRow, limit int) []core.AggregateRow {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].ID < rows[j].ID
	})
	if limit >= 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
