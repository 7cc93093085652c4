// Package storage persists the application snapshot to a local SQLite
// database as a single JSON value under a fixed key. Writes replace the
// whole value in one statement; there is no partial update path.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"budget/internal/core"
	"budget/internal/state"
)

const snapshotKey = "budget.tracker.state"

// snapshotRecord mirrors the durable wire format: amounts as JSON numbers,
// dates as YYYY-MM-DD, currentMonth zero-based (0-11).
type snapshotRecord struct {
	Expenses      []expenseRecord `json:"expenses"`
	MonthlyBudget float64         `json:"monthlyBudget"`
	CurrentMonth  int             `json:"currentMonth"`
	CurrentYear   int             `json:"currentYear"`
}

type expenseRecord struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
}

type SQLiteRepository struct {
	db *sql.DB
}

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

	// Run migrations
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

// SaveSnapshot serializes the snapshot and replaces the stored value
// atomically. The transient UI fields (filter, timer) are not part of the
// snapshot type and therefore never reach the database.
func (r *SQLiteRepository) SaveSnapshot(ctx context.Context, snap state.Snapshot) error {
	record := snapshotRecord{
		Expenses:      make([]expenseRecord, 0, len(snap.Expenses)),
		MonthlyBudget: snap.MonthlyBudget.InexactFloat64(),
		CurrentMonth:  int(snap.CurrentMonth) - 1,
		CurrentYear:   snap.CurrentYear,
	}
	for _, e := range snap.Expenses {
		record.Expenses = append(record.Expenses, expenseRecord{
			ID:          e.ID,
			Amount:      e.Amount.InexactFloat64(),
			Category:    string(e.Category),
			Description: e.Description,
			Date:        e.Date.String(),
		})
	}

	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, snapshotKey, string(value), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved",
		"expenses", len(snap.Expenses),
		"month", record.CurrentMonth,
		"year", record.CurrentYear)
	return nil
}

// LoadSnapshot reads the stored snapshot. A missing key returns (nil, nil);
// a corrupt value is logged and also returns (nil, nil) so the caller
// falls back to defaults instead of crashing the load path. Individually
// invalid expense records are dropped, the rest of the snapshot survives.
func (r *SQLiteRepository) LoadSnapshot(ctx context.Context) (*state.Snapshot, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE key = ?`, snapshotKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var record snapshotRecord
	if err := json.Unmarshal([]byte(value), &record); err != nil {
		slog.WarnContext(ctx, "Stored snapshot is malformed, falling back to defaults",
			"error", err)
		return nil, nil
	}
	if record.CurrentMonth < 0 || record.CurrentMonth > 11 || record.CurrentYear <= 0 {
		slog.WarnContext(ctx, "Stored snapshot has an invalid period, falling back to defaults",
			"month", record.CurrentMonth,
			"year", record.CurrentYear)
		return nil, nil
	}

	snap := &state.Snapshot{
		MonthlyBudget: decimal.NewFromFloat(record.MonthlyBudget),
		CurrentMonth:  time.Month(record.CurrentMonth + 1),
		CurrentYear:   record.CurrentYear,
	}
	if snap.MonthlyBudget.IsNegative() {
		snap.MonthlyBudget = decimal.Zero
	}

	for _, rec := range record.Expenses {
		date, err := core.ParseDate(rec.Date)
		if err != nil {
			slog.WarnContext(ctx, "Dropping expense with unparseable date",
				"expense_id", rec.ID, "error", err)
			continue
		}
		expense := core.Expense{
			ID:          rec.ID,
			Amount:      decimal.NewFromFloat(rec.Amount),
			Category:    core.Category(rec.Category),
			Description: rec.Description,
			Date:        date,
		}
		if err := expense.Validate(); err != nil {
			slog.WarnContext(ctx, "Dropping invalid stored expense",
				"expense_id", rec.ID, "error", err)
			continue
		}
		snap.Expenses = append(snap.Expenses, expense)
	}

	slog.InfoContext(ctx, "Snapshot loaded",
		"expenses", len(snap.Expenses),
		"month", record.CurrentMonth,
		"year", record.CurrentYear)
	return snap, nil
}
