package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/state"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testSnapshot() state.Snapshot {
	return state.Snapshot{
		Expenses: []core.Expense{
			{
				ID:          "0191-aaa",
				Amount:      decimal.RequireFromString("12.34"),
				Category:    core.Food,
				Description: "lunch",
				Date:        core.NewDate(2024, time.January, 15),
			},
			{
				ID:          "0191-bbb",
				Amount:      decimal.RequireFromString("250"),
				Category:    core.Utilities,
				Description: "electricity",
				Date:        core.NewDate(2024, time.January, 2),
			},
		},
		MonthlyBudget: decimal.RequireFromString("1000"),
		CurrentMonth:  time.January,
		CurrentYear:   2024,
	}
}

func TestLoadMissingKeyReturnsNil(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap != nil {
		t.Errorf("expected nil snapshot for missing key, got %+v", snap)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded == nil {
		t.Fatal("expected a snapshot")
	}

	if !loaded.MonthlyBudget.Equal(decimal.RequireFromString("1000")) {
		t.Errorf("budget = %s", loaded.MonthlyBudget)
	}
	if loaded.CurrentMonth != time.January || loaded.CurrentYear != 2024 {
		t.Errorf("period = %v %d", loaded.CurrentMonth, loaded.CurrentYear)
	}
	if len(loaded.Expenses) != 2 {
		t.Fatalf("expenses = %d, want 2", len(loaded.Expenses))
	}

	got := loaded.Expenses[0]
	if got.ID != "0191-aaa" || got.Description != "lunch" || got.Category != core.Food {
		t.Errorf("expense = %+v", got)
	}
	if !got.Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("amount = %s, want 12.34", got.Amount)
	}
	if got.Date.String() != "2024-01-15" {
		t.Errorf("date = %s", got.Date)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	empty := state.Snapshot{
		MonthlyBudget: decimal.Zero,
		CurrentMonth:  time.February,
		CurrentYear:   2024,
	}
	if err := repo.SaveSnapshot(ctx, empty); err != nil {
		t.Fatalf("second save: %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Expenses) != 0 {
		t.Errorf("old expenses survived the replace: %d", len(loaded.Expenses))
	}
	if loaded.CurrentMonth != time.February {
		t.Errorf("month = %v", loaded.CurrentMonth)
	}
}

func TestLoadMalformedValueFallsBackToDefaults(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		value string
	}{
		{"not json", "{{{definitely not json"},
		{"wrong shape", `"just a string"`},
		{"month out of range", `{"expenses":[],"monthlyBudget":100,"currentMonth":12,"currentYear":2024}`},
		{"negative month", `{"expenses":[],"monthlyBudget":100,"currentMonth":-1,"currentYear":2024}`},
		{"zero year", `{"expenses":[],"monthlyBudget":100,"currentMonth":3,"currentYear":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.db.ExecContext(ctx, `
				INSERT INTO snapshots (key, value) VALUES (?, ?)
				ON CONFLICT(key) DO UPDATE SET value = excluded.value
			`, snapshotKey, tt.value)
			if err != nil {
				t.Fatalf("seed corrupt value: %v", err)
			}

			snap, err := repo.LoadSnapshot(ctx)
			if err != nil {
				t.Fatalf("load must not fail on corrupt data: %v", err)
			}
			if snap != nil {
				t.Errorf("corrupt value must load as nil, got %+v", snap)
			}
		})
	}
}

func TestLoadDropsInvalidExpenseRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	value := `{
		"expenses": [
			{"id":"good","amount":10,"category":"food","description":"ok","date":"2024-01-05"},
			{"id":"bad-amount","amount":-3,"category":"food","description":"x","date":"2024-01-06"},
			{"id":"bad-category","amount":5,"category":"rent","description":"x","date":"2024-01-07"},
			{"id":"bad-date","amount":5,"category":"food","description":"x","date":"07/01/2024"}
		],
		"monthlyBudget": 500,
		"currentMonth": 0,
		"currentYear": 2024
	}`
	if _, err := repo.db.ExecContext(ctx,
		`INSERT INTO snapshots (key, value) VALUES (?, ?)`, snapshotKey, value); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snap, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap == nil {
		t.Fatal("snapshot with salvageable records must load")
	}
	if len(snap.Expenses) != 1 || snap.Expenses[0].ID != "good" {
		t.Errorf("expenses = %+v, want only the valid record", snap.Expenses)
	}
	if snap.CurrentMonth != time.January {
		t.Errorf("zero-based month 0 must map to January, got %v", snap.CurrentMonth)
	}
}

func TestWireFormatUsesZeroBasedMonth(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.SaveSnapshot(ctx, testSnapshot()); err != nil {
		t.Fatalf("save: %v", err)
	}

	var value string
	if err := repo.db.QueryRowContext(ctx,
		`SELECT value FROM snapshots WHERE key = ?`, snapshotKey).Scan(&value); err != nil {
		t.Fatalf("read raw value: %v", err)
	}
	// January stores as 0, matching the durable contract.
	if want := `"currentMonth":0`; !strings.Contains(value, want) {
		t.Errorf("raw value %s missing %s", value, want)
	}
	if want := `"date":"2024-01-15"`; !strings.Contains(value, want) {
		t.Errorf("raw value %s missing %s", value, want)
	}
}
