// Package commands implements the user-facing operations. Every mutation
// follows the same pipeline: validate input, roll the period forward if
// the calendar moved, commit the state transition, persist the snapshot,
// then rebuild the render model and evaluate the budget warning.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/alert"
	"budget/internal/clock"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/render"
	"budget/internal/state"
)

type Intent string

const (
	IntentSetBudget      Intent = "set_budget"
	IntentAddExpense     Intent = "add_expense"
	IntentDeleteExpense  Intent = "delete_expense"
	IntentClearAll       Intent = "clear_all"
	IntentChangeFilter   Intent = "change_filter"
	IntentDismissWarning Intent = "dismiss_warning"
	IntentRefresh        Intent = "refresh"
)

// Persister writes the durable snapshot. Failures are logged and
// swallowed; in-memory state stays authoritative either way.
type Persister interface {
	SaveSnapshot(ctx context.Context, snap state.Snapshot) error
}

type AddExpenseInput struct {
	Amount      string
	Category    string
	Description string
	Date        string
}

// Request carries one intent plus its payload through the dispatch table.
type Request struct {
	Intent    Intent
	Budget    string
	Expense   AddExpenseInput
	ExpenseID string
	Filter    string
	Confirmed bool
}

type Deps struct {
	Store     *state.Store
	Persister Persister
	Alerts    *alert.Controller
	Clock     clock.Clock
	Logger    *log.Logger

	// SimulatedLatency delays mutating commands to mimic a slow save.
	// Zero skips the wait entirely; the end state is identical.
	SimulatedLatency time.Duration
}

type App struct {
	store    *state.Store
	persist  Persister
	alerts   *alert.Controller
	clock    clock.Clock
	logger   *log.Logger
	latency  time.Duration
	handlers map[Intent]func(context.Context, Request) render.Model
}

func New(deps Deps) *App {
	a := &App{
		store:   deps.Store,
		persist: deps.Persister,
		alerts:  deps.Alerts,
		clock:   deps.Clock,
		logger:  deps.Logger.WithComponent(log.ComponentCommands),
		latency: deps.SimulatedLatency,
	}
	a.handlers = map[Intent]func(context.Context, Request) render.Model{
		IntentSetBudget:      func(ctx context.Context, r Request) render.Model { return a.SetBudget(ctx, r.Budget) },
		IntentAddExpense:     func(ctx context.Context, r Request) render.Model { return a.AddExpense(ctx, r.Expense) },
		IntentDeleteExpense:  func(ctx context.Context, r Request) render.Model { return a.DeleteExpense(ctx, r.ExpenseID) },
		IntentClearAll:       func(ctx context.Context, r Request) render.Model { return a.ClearAll(ctx, r.Confirmed) },
		IntentChangeFilter:   func(ctx context.Context, r Request) render.Model { return a.ChangeFilter(ctx, r.Filter) },
		IntentDismissWarning: func(ctx context.Context, r Request) render.Model { return a.DismissWarning(ctx) },
		IntentRefresh:        func(ctx context.Context, r Request) render.Model { return a.Refresh(ctx) },
	}
	return a
}

// Dispatch routes a request to its handler. Commands run one at a time
// from the caller's perspective; each returns only after its persistence
// write has completed or failed.
func (a *App) Dispatch(ctx context.Context, req Request) (render.Model, error) {
	handler, ok := a.handlers[req.Intent]
	if !ok {
		return render.Model{}, fmt.Errorf("unknown intent %q", req.Intent)
	}
	return handler(ctx, req), nil
}

// SetBudget validates and commits the monthly budget.
func (a *App) SetBudget(ctx context.Context, raw string) render.Model {
	a.rollPeriod(ctx)

	value, err := decimal.NewFromString(raw)
	if err != nil || !value.IsPositive() {
		a.logger.WarnContext(ctx, "Rejected budget value",
			log.FieldBudget, raw,
			log.FieldOperation, log.OpValidate)
		return a.reconcile(ctx, "Please enter a valid budget amount")
	}

	a.wait(ctx)
	a.store.Commit(func(st *state.State) {
		st.MonthlyBudget = value
	})
	a.persistSnapshot(ctx)

	a.logger.InfoContext(ctx, "Budget updated", log.FieldBudget, value.String())
	return a.reconcile(ctx, "")
}

// AddExpense validates the raw fields and appends a new expense. Insertion
// order is storage order; display order is derived at render time.
func (a *App) AddExpense(ctx context.Context, in AddExpenseInput) render.Model {
	a.rollPeriod(ctx)

	today := core.DateOf(a.clock.Now())
	expense, err := core.NewExpense(in.Amount, in.Category, in.Description, in.Date, today)
	if err != nil {
		var vErr *core.ValidationError
		if errors.As(err, &vErr) {
			a.logger.WarnContext(ctx, "Rejected expense",
				log.FieldError, err,
				log.FieldOperation, log.OpValidate)
			return a.reconcile(ctx, vErr.Error())
		}
		a.logger.ErrorContext(ctx, "Failed to build expense", log.FieldError, err)
		return a.reconcile(ctx, "Could not add expense")
	}

	a.wait(ctx)
	a.store.Commit(func(st *state.State) {
		st.Expenses = append(st.Expenses, expense)
	})
	a.persistSnapshot(ctx)

	a.logger.InfoContext(ctx, "Expense added",
		log.FieldExpenseID, expense.ID,
		log.FieldAmount, expense.Amount.String(),
		log.FieldCategory, string(expense.Category))
	return a.reconcile(ctx, "")
}

// DeleteExpense removes the expense with the given id. Deleting an absent
// id is a successful no-op; nothing is persisted in that case.
func (a *App) DeleteExpense(ctx context.Context, id string) render.Model {
	a.rollPeriod(ctx)

	found := false
	a.store.Commit(func(st *state.State) {
		for i, e := range st.Expenses {
			if e.ID == id {
				st.Expenses = append(st.Expenses[:i], st.Expenses[i+1:]...)
				found = true
				return
			}
		}
	})

	if !found {
		a.logger.DebugContext(ctx, "Delete of absent expense ignored", log.FieldExpenseID, id)
		return a.reconcile(ctx, "")
	}

	a.persistSnapshot(ctx)
	a.logger.InfoContext(ctx, "Expense deleted", log.FieldExpenseID, id)
	return a.reconcile(ctx, "")
}

// ClearAll replaces the expense list with an empty one. The caller must
// have confirmed with the user first; an unconfirmed request mutates
// nothing.
func (a *App) ClearAll(ctx context.Context, confirmed bool) render.Model {
	a.rollPeriod(ctx)

	if !confirmed {
		return a.reconcile(ctx, "Clearing all expenses requires confirmation")
	}

	a.store.Commit(func(st *state.State) {
		st.Expenses = nil
	})
	a.persistSnapshot(ctx)

	a.logger.InfoContext(ctx, "All expenses cleared")
	return a.reconcile(ctx, "")
}

// ChangeFilter updates the transient category filter. Not persisted.
func (a *App) ChangeFilter(ctx context.Context, raw string) render.Model {
	a.rollPeriod(ctx)

	filter, err := core.ParseFilter(raw)
	if err != nil {
		a.logger.WarnContext(ctx, "Rejected filter",
			log.FieldFilter, raw,
			log.FieldOperation, log.OpValidate)
		return a.reconcile(ctx, "Unknown category filter")
	}

	a.store.Commit(func(st *state.State) {
		st.SelectedFilter = filter
	})
	return a.reconcile(ctx, "")
}

// DismissWarning hides the overspend banner and cancels its timer.
func (a *App) DismissWarning(ctx context.Context) render.Model {
	a.alerts.Dismiss()
	return a.renderOnly(ctx)
}

// Refresh rolls the period if needed and rebuilds the render model without
// any other mutation.
func (a *App) Refresh(ctx context.Context) render.Model {
	a.rollPeriod(ctx)
	return a.reconcile(ctx, "")
}

// reconcile rebuilds the render model from a state snapshot and arms the
// warning when the current period is overspent. Arming happens before the
// visibility read so an overspending command reports the banner in the
// same response.
func (a *App) reconcile(ctx context.Context, formError string) render.Model {
	st := a.store.Snapshot()
	if render.Overspent(st) {
		a.alerts.Arm()
	}
	m := render.Build(st)
	m.WarningVisible = a.alerts.Visible()
	m.FormError = formError
	return m
}

// renderOnly rebuilds the model without re-evaluating the warning, so a
// manual dismissal is not immediately re-armed.
func (a *App) renderOnly(ctx context.Context) render.Model {
	m := render.Build(a.store.Snapshot())
	m.WarningVisible = a.alerts.Visible()
	return m
}

// rollPeriod advances the stored period when the calendar has moved on and
// persists the roll immediately. Expenses are never touched.
func (a *App) rollPeriod(ctx context.Context) {
	if !a.store.RollForward() {
		return
	}
	st := a.store.Snapshot()
	a.logger.InfoContext(ctx, "Period rolled forward",
		log.FieldMonth, int(st.CurrentMonth),
		log.FieldYear, st.CurrentYear,
		log.FieldOperation, log.OpRollover)
	a.persistSnapshot(ctx)
}

// persistSnapshot writes the durable snapshot synchronously. A failure is
// logged and swallowed: the app keeps running on in-memory state and the
// worst outcome is that changes do not survive a restart.
func (a *App) persistSnapshot(ctx context.Context) {
	if err := a.persist.SaveSnapshot(ctx, a.store.Durable()); err != nil {
		a.logger.ErrorContext(ctx, "Failed to persist snapshot",
			log.FieldError, err,
			log.FieldOperation, log.OpSave)
	}
}

// wait applies the configured artificial latency. It is cancellable and a
// zero setting skips it, so tests observe identical state transitions.
func (a *App) wait(ctx context.Context) {
	if a.latency <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(a.latency):
	}
}
