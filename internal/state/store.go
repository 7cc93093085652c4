// Package state owns the single mutable application state. Every mutation
// goes through Store.Commit; everything else sees value copies.
package state

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/clock"
	"budget/internal/core"
)

// State is the composite application state. Expenses, budget and period
// are durable; SelectedFilter is transient UI state and never persisted.
type State struct {
	Expenses       []core.Expense
	MonthlyBudget  decimal.Decimal
	CurrentMonth   time.Month
	CurrentYear    int
	SelectedFilter core.Filter
}

// Snapshot is the durable subset of State, the unit the persistence
// adapter reads and writes.
type Snapshot struct {
	Expenses      []core.Expense
	MonthlyBudget decimal.Decimal
	CurrentMonth  time.Month
	CurrentYear   int
}

// Store is the sole owner of State. Reads hand out deep copies; writes run
// under the lock so no render pass can observe a half-applied mutation.
type Store struct {
	mu    sync.Mutex
	state State
	clock clock.Clock
}

// New builds a store with empty defaults: no expenses, budget unset,
// period set to the clock's current month/year.
func New(c clock.Clock) *Store {
	now := c.Now()
	return &Store{
		clock: c,
		state: State{
			MonthlyBudget:  decimal.Zero,
			CurrentMonth:   now.Month(),
			CurrentYear:    now.Year(),
			SelectedFilter: core.FilterAll,
		},
	}
}

// NewFromSnapshot restores a store from a persisted snapshot. The period
// is rolled forward immediately if the snapshot predates the clock;
// RollForward's return value tells the caller whether to re-persist.
func NewFromSnapshot(c clock.Clock, snap Snapshot) *Store {
	s := New(c)
	s.state.Expenses = copyExpenses(snap.Expenses)
	s.state.MonthlyBudget = snap.MonthlyBudget
	if snap.CurrentMonth >= time.January && snap.CurrentMonth <= time.December && snap.CurrentYear > 0 {
		s.state.CurrentMonth = snap.CurrentMonth
		s.state.CurrentYear = snap.CurrentYear
	}
	return s
}

// Snapshot returns a read-only deep copy of the full state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyState()
}

// Durable returns the persistable subset of the state.
func (s *Store) Durable() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Expenses:      copyExpenses(s.state.Expenses),
		MonthlyBudget: s.state.MonthlyBudget,
		CurrentMonth:  s.state.CurrentMonth,
		CurrentYear:   s.state.CurrentYear,
	}
}

// Commit applies a state transition atomically and returns a copy of the
// resulting state.
func (s *Store) Commit(mutate func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
	return s.copyState()
}

// RollForward compares the stored period against the clock and advances it
// when the calendar has moved on. Expenses are retained untouched; they
// simply stop counting toward current spend. The roll never goes backward,
// so a clock reporting an earlier period than the stored one is ignored.
func (s *Store) RollForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	month, year := now.Month(), now.Year()
	if year < s.state.CurrentYear ||
		(year == s.state.CurrentYear && month <= s.state.CurrentMonth) {
		return false
	}
	s.state.CurrentMonth = month
	s.state.CurrentYear = year
	return true
}

func (s *Store) copyState() State {
	out := s.state
	out.Expenses = copyExpenses(s.state.Expenses)
	return out
}

func copyExpenses(in []core.Expense) []core.Expense {
	if in == nil {
		return nil
	}
	out := make([]core.Expense, len(in))
	copy(out, in)
	return out
}
