package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expense(id, amount string, category Category, date Date) Expense {
	return Expense{
		ID:          id,
		Amount:      dec(amount),
		Category:    category,
		Description: "test",
		Date:        date,
	}
}

func TestTotalSpent(t *testing.T) {
	expenses := []Expense{
		expense("a", "10.50", Food, NewDate(2024, time.January, 5)),
		expense("b", "20", Transport, NewDate(2024, time.January, 31)),
		expense("c", "99", Food, NewDate(2024, time.February, 1)),
		expense("d", "7", Other, NewDate(2023, time.January, 5)),
	}

	got := TotalSpent(expenses, time.January, 2024)
	if !got.Equal(dec("30.50")) {
		t.Errorf("TotalSpent = %s, want 30.50", got)
	}

	if !TotalSpent(nil, time.January, 2024).Equal(decimal.Zero) {
		t.Error("TotalSpent of empty input must be 0")
	}

	// Same month in a different year never counts.
	if !TotalSpent(expenses, time.January, 2023).Equal(dec("7")) {
		t.Error("year must participate in period membership")
	}
}

func TestRemaining(t *testing.T) {
	if got := Remaining(dec("1000"), dec("1200")); !got.Equal(dec("-200")) {
		t.Errorf("Remaining = %s, want -200", got)
	}
	if got := Remaining(dec("1000"), dec("250")); !got.Equal(dec("750")) {
		t.Errorf("Remaining = %s, want 750", got)
	}
}

func TestPercentSpentClamped(t *testing.T) {
	tests := []struct {
		name   string
		budget string
		spent  string
		want   float64
	}{
		{"zero budget", "0", "500", 0},
		{"negative budget", "-10", "500", 0},
		{"untouched", "1000", "0", 0},
		{"halfway", "1000", "500", 50},
		{"exact", "1000", "1000", 100},
		{"overspent clamps", "1000", "1200", 100},
		{"wildly overspent clamps", "1", "100000", 100},
		{"fractional", "300", "100", 33.33333333333333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PercentSpent(dec(tt.budget), dec(tt.spent))
			if got < 0 || got > 100 {
				t.Fatalf("PercentSpent = %v, outside [0,100]", got)
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("PercentSpent = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterByCategory(t *testing.T) {
	expenses := []Expense{
		expense("a", "1", Food, NewDate(2024, time.January, 1)),
		expense("b", "2", Transport, NewDate(2024, time.January, 2)),
		expense("c", "3", Food, NewDate(2024, time.January, 3)),
	}

	all := FilterByCategory(expenses, FilterAll)
	if len(all) != 3 {
		t.Errorf("FilterAll returned %d expenses, want 3", len(all))
	}

	food := FilterByCategory(expenses, Filter(Food))
	if len(food) != 2 || food[0].ID != "a" || food[1].ID != "c" {
		t.Errorf("food filter = %v", food)
	}

	if got := FilterByCategory(expenses, Filter(Utilities)); len(got) != 0 {
		t.Errorf("utilities filter = %v, want empty", got)
	}
}

func TestSortForDisplay(t *testing.T) {
	expenses := []Expense{
		expense("id-1", "1", Food, NewDate(2024, time.January, 10)),
		expense("id-3", "2", Food, NewDate(2024, time.January, 20)),
		expense("id-2", "3", Food, NewDate(2024, time.January, 20)),
		expense("id-4", "4", Food, NewDate(2023, time.December, 31)),
	}

	sorted := SortForDisplay(expenses)

	wantOrder := []string{"id-3", "id-2", "id-1", "id-4"}
	for i, want := range wantOrder {
		if sorted[i].ID != want {
			t.Fatalf("position %d: got %s, want %s (full: %v)", i, sorted[i].ID, want, ids(sorted))
		}
	}

	// Input order is preserved.
	if expenses[0].ID != "id-1" {
		t.Error("SortForDisplay mutated its input")
	}
}

func TestSortForDisplayTieBreakIsLexicographic(t *testing.T) {
	day := NewDate(2024, time.June, 1)
	expenses := []Expense{
		expense("0189f", "1", Food, day),
		expense("019aa", "2", Food, day),
		expense("01900", "3", Food, day),
	}

	sorted := SortForDisplay(expenses)
	want := []string{"019aa", "01900", "0189f"}
	for i := range want {
		if sorted[i].ID != want[i] {
			t.Fatalf("got %v, want %v", ids(sorted), want)
		}
	}
}

func TestSortForDisplayDeterministic(t *testing.T) {
	day := NewDate(2024, time.June, 1)
	a := []Expense{
		expense("x", "1", Food, day),
		expense("y", "2", Food, day),
	}
	b := []Expense{a[1], a[0]}

	sortedA := SortForDisplay(a)
	sortedB := SortForDisplay(b)
	for i := range sortedA {
		if sortedA[i].ID != sortedB[i].ID {
			t.Fatal("sort order depends on input order")
		}
	}
}

func ids(expenses []Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}
