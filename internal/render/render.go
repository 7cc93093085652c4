// Package render derives the presentation model from application state.
// Build is pure: the same state always yields the same model, so a render
// pass can be repeated at any time without visible drift.
package render

import (
	"math"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/state"
)

// overThresholdPercent is where the progress indicator flips to its
// warning presentation.
const overThresholdPercent = 90

type ExpenseView struct {
	ID            string `json:"id"`
	Icon          string `json:"icon"`
	CategoryLabel string `json:"categoryLabel"`
	Description   string `json:"description"`
	DateText      string `json:"dateText"`
	AmountText    string `json:"amountText"`
	IsPriorPeriod bool   `json:"isPriorPeriod"`
}

// Model is the complete outbound contract to the presentation layer.
// WarningVisible and FormError are stamped on by the command layer; Build
// leaves them at their zero values.
type Model struct {
	BudgetText      string        `json:"budgetText"`
	SpentText       string        `json:"spentText"`
	RemainingText   string        `json:"remainingText"`
	Percent         float64       `json:"percent"`
	OverThreshold   bool          `json:"overThreshold"`
	VisibleExpenses []ExpenseView `json:"visibleExpenses"`
	IsEmpty         bool          `json:"isEmpty"`
	WarningVisible  bool          `json:"warningVisible"`
	FormError       string        `json:"formError,omitempty"`
}

// Build re-derives the full visible model from state: current-period
// totals, then the filtered and sorted expense rows. Expenses from prior
// periods stay in the list but are tagged so the presentation can dim
// them; they never count toward spend.
func Build(st state.State) Model {
	spent := core.TotalSpent(st.Expenses, st.CurrentMonth, st.CurrentYear)
	remaining := core.Remaining(st.MonthlyBudget, spent)
	percent := roundPercent(core.PercentSpent(st.MonthlyBudget, spent))

	visible := core.SortForDisplay(core.FilterByCategory(st.Expenses, st.SelectedFilter))
	views := make([]ExpenseView, 0, len(visible))
	for _, e := range visible {
		views = append(views, ExpenseView{
			ID:            e.ID,
			Icon:          e.Category.Icon(),
			CategoryLabel: e.Category.Label(),
			Description:   e.Description,
			DateText:      e.Date.Format("Jan 2, 2006"),
			AmountText:    formatCurrency(e.Amount),
			IsPriorPeriod: !e.InPeriod(st.CurrentMonth, st.CurrentYear),
		})
	}

	return Model{
		BudgetText:      formatCurrency(st.MonthlyBudget),
		SpentText:       formatCurrency(spent),
		RemainingText:   formatCurrency(remaining),
		Percent:         percent,
		OverThreshold:   percent >= overThresholdPercent,
		VisibleExpenses: views,
		IsEmpty:         len(views) == 0,
	}
}

// Overspent reports whether the state should arm the budget warning:
// a budget is set and the current period's spend exceeds it.
func Overspent(st state.State) bool {
	if !st.MonthlyBudget.IsPositive() {
		return false
	}
	spent := core.TotalSpent(st.Expenses, st.CurrentMonth, st.CurrentYear)
	return core.Remaining(st.MonthlyBudget, spent).IsNegative()
}

// formatCurrency renders an amount as a dollar string with two decimals,
// sign ahead of the symbol (e.g. "-$200.00").
func formatCurrency(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}

func roundPercent(p float64) float64 {
	return math.Round(p*10) / 10
}
