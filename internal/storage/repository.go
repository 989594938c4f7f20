package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"donoboard/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository keeps both aggregate tables in a single database file so
// every mutation can touch the all-time and monthly rows in one transaction.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ApplyAdd implements Store.
func (r *SQLiteRepository) ApplyAdd(ctx context.Context, id, displayName string, amount int64, month string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin add tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO alltime_totals (entrant_id, display_name, total)
		VALUES (?, ?, ?)
		ON CONFLICT (entrant_id)
		DO UPDATE SET total = total + excluded.total, display_name = excluded.display_name`,
		id, displayName, amount)
	if err != nil {
		return fmt.Errorf("upsert all-time total: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO monthly_totals (entrant_id, display_name, total, month)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (entrant_id, month)
		DO UPDATE SET total = total + excluded.total, display_name = excluded.display_name`,
		id, displayName, amount, month)
	if err != nil {
		return fmt.Errorf("upsert monthly total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit add tx: %w", err)
	}

	slog.DebugContext(ctx, "Applied addition to ledger",
		"entrant_id", id, "amount", amount, "month", month)
	return nil
}

// ApplySubtract implements Store. Each table is clamped independently and a
// missing row stays missing.
func (r *SQLiteRepository) ApplySubtract(ctx context.Context, id, displayName string, amount int64, month string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin subtract tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE alltime_totals
		SET total = MAX(total - ?, 0), display_name = ?
		WHERE entrant_id = ?`,
		amount, displayName, id)
	if err != nil {
		return fmt.Errorf("subtract all-time total: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE monthly_totals
		SET total = MAX(total - ?, 0), display_name = ?
		WHERE entrant_id = ? AND month = ?`,
		amount, displayName, id, month)
	if err != nil {
		return fmt.Errorf("subtract monthly total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit subtract tx: %w", err)
	}

	slog.DebugContext(ctx, "Applied subtraction to ledger",
		"entrant_id", id, "amount", amount, "month", month)
	return nil
}

// DeleteEntrant implements Store.
func (r *SQLiteRepository) DeleteEntrant(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alltime_totals WHERE entrant_id = ?`, id); err != nil {
		return fmt.Errorf("delete all-time row: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_totals WHERE entrant_id = ?`, id); err != nil {
		return fmt.Errorf("delete monthly rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete tx: %w", err)
	}
	return nil
}

// Truncate implements Store.
func (r *SQLiteRepository) Truncate(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin truncate tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM alltime_totals`); err != nil {
		return fmt.Errorf("truncate all-time table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_totals`); err != nil {
		return fmt.Errorf("truncate monthly table: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit truncate tx: %w", err)
	}
	return nil
}

// TopAllTime implements Store.
func (r *SQLiteRepository) TopAllTime(ctx context.Context, limit int) ([]core.AggregateRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entrant_id, display_name, total
		FROM alltime_totals
		ORDER BY total DESC, entrant_id ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query top all-time: %w", err)
	}
	defer rows.Close()

	return scanAggregateRows(rows)
}

// TopMonthly implements Store.
func (r *SQLiteRepository) TopMonthly(ctx context.Context, month string, limit int) ([]core.AggregateRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entrant_id, display_name, total
		FROM monthly_totals
		WHERE month = ?
		ORDER BY total DESC, entrant_id ASC
		LIMIT ?`, month, limit)
	if err != nil {
		return nil, fmt.Errorf("query top monthly: %w", err)
	}
	defer rows.Close()

	return scanAggregateRows(rows)
}

// LatestMonth implements Store.
func (r *SQLiteRepository) LatestMonth(ctx context.Context) (string, bool, error) {
	var month string
	err := r.db.QueryRowContext(ctx,
		`SELECT month FROM monthly_totals ORDER BY month DESC LIMIT 1`).Scan(&month)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query latest month: %w", err)
	}
	return month, true, nil
}

// PurgeStaleMonths implements Store.
func (r *SQLiteRepository) PurgeStaleMonths(ctx context.Context, currentMonth string) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM monthly_totals WHERE month <> ?`, currentMonth)
	if err != nil {
		return 0, fmt.Errorf("purge stale months: %w", err)
	}
	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count purged rows: %w", err)
	}
	if purged > 0 {
		slog.InfoContext(ctx, "Purged stale monthly rows",
			"current_month", currentMonth, "purged", purged)
	}
	return purged, nil
}

func scanAggregateRows(rows *sql.Rows) ([]core.AggregateRow, error) {
	var out []core.AggregateRow
	for rows.Next() {
		var row core.AggregateRow
		if err := rows.Scan(&row.ID, &row.DisplayName, &row.Total); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregate rows: %w", err)
	}
	return out, nil
}
