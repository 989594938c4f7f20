package storage

import (
	"context"

	"donoboard/internal/core"
)

// Store is the durable ledger behind the aggregation engine: the all-time and
// monthly aggregate tables under one transactional boundary. Implementations
// must apply each mutation atomically across both tables.
type Store interface {
	// ApplyAdd adds amount to both aggregates for the entrant, creating rows
	// as needed, and refreshes the display name on both.
	ApplyAdd(ctx context.Context, id, displayName string, amount int64, month string) error

	// ApplySubtract subtracts amount from whichever rows exist, floor-clamped
	// at zero. Missing rows are left untouched; a subtraction never creates one.
	ApplySubtract(ctx context.Context, id, displayName string, amount int64, month string) error

	// DeleteEntrant removes the all-time row and every monthly row for the id.
	// Idempotent.
	DeleteEntrant(ctx context.Context, id string) error

	// Truncate empties both aggregate tables.
	Truncate(ctx context.Context) error

	// TopAllTime returns up to limit all-time rows ordered by total
	// descending, ties broken by ascending entrant id.
	TopAllTime(ctx context.Context, limit int) ([]core.AggregateRow, error)

	// TopMonthly is TopAllTime over a single month bucket.
	TopMonthly(ctx context.Context, month string, limit int) ([]core.AggregateRow, error)

	// LatestMonth reports the highest month key present in the monthly table.
	// The bool is false when the table is empty.
	LatestMonth(ctx context.Context) (string, bool, error)

	// PurgeStaleMonths deletes every monthly row whose month key differs from
	// currentMonth and returns how many rows went away.
	PurgeStaleMonths(ctx context.Context, currentMonth string) (int64, error)

	Close() error
}
