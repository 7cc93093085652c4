package core

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TotalSpent sums the amounts of expenses that fall in the given period.
// Expenses outside the period never contribute.
func TotalSpent(expenses []Expense, month time.Month, year int) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		if e.InPeriod(month, year) {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// Remaining is budget minus spent; negative means overspent.
func Remaining(budget, spent decimal.Decimal) decimal.Decimal {
	return budget.Sub(spent)
}

// PercentSpent returns spent/budget as a percentage clamped to [0, 100],
// so a progress indicator never runs past full scale. An unset budget
// (zero or negative) yields 0.
func PercentSpent(budget, spent decimal.Decimal) float64 {
	if !budget.IsPositive() {
		return 0
	}
	percent, _ := spent.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

// FilterByCategory returns the expenses matching the filter. FilterAll is
// the identity. The input slice is never modified.
func FilterByCategory(expenses []Expense, filter Filter) []Expense {
	if filter == FilterAll {
		return expenses
	}
	var out []Expense
	for _, e := range expenses {
		if e.Category == Category(filter) {
			out = append(out, e)
		}
	}
	return out
}

// SortForDisplay orders expenses by date descending, breaking same-day
// ties by id descending, so the most recently created entry lands first.
// The sort is stable and the input slice is left untouched.
func SortForDisplay(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	copy(out, expenses)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date)
		}
		return strings.Compare(out[i].ID, out[j].ID) > 0
	})
	return out
}
