package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Shopping      Category = "shopping"
	Entertainment Category = "entertainment"
	Healthcare    Category = "healthcare"
	Utilities     Category = "utilities"
	Education     Category = "education"
	Other         Category = "other"
)

// FilterAll selects every category.
const FilterAll Filter = "all"

type (
	Category string

	// Filter is either a Category or FilterAll.
	Filter string

	// Date is a calendar date with no time component. Comparisons are
	// date-only so month boundaries never shift with the wall clock.
	Date struct {
		time.Time
	}

	// Expense is immutable once created. ID is a UUIDv7, so the string
	// form sorts consistently with creation order.
	Expense struct {
		ID          string
		Amount      decimal.Decimal
		Category    Category
		Description string
		Date        Date
	}
)

var categories = []Category{
	Food, Transport, Shopping, Entertainment,
	Healthcare, Utilities, Education, Other,
}

var (
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrInvalidCategory  = errors.New("unknown category")
	ErrEmptyDescription = errors.New("description cannot be empty")
	ErrMissingDate      = errors.New("date is required")
	ErrFutureDate       = errors.New("date cannot be in the future")
)

// ValidationError marks bad user input. Command handlers surface it to the
// form and abort without touching state.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error) *ValidationError { return &ValidationError{Err: err} }

// Categories returns the fixed category set in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

func (c Category) Valid() bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the human-readable category name.
func (c Category) Label() string {
	if len(c) == 0 {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// Icon returns the glyph shown next to the category in expense rows.
func (c Category) Icon() string {
	switch c {
	case Food:
		return "🍔"
	case Transport:
		return "🚗"
	case Shopping:
		return "🛍️"
	case Entertainment:
		return "🎬"
	case Healthcare:
		return "🏥"
	case Utilities:
		return "💡"
	case Education:
		return "📚"
	default:
		return "📦"
	}
}

// ParseFilter accepts "all" or any known category.
func ParseFilter(raw string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(raw)))
	if f == FilterAll {
		return f, nil
	}
	if Category(f).Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// NewDate creates a Date from year, month, day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location, so "today"
// is the user's local day, not the UTC one.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return Date{Time: t}, nil
}

// After reports whether d is strictly after other, comparing dates only.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }

func (d Date) String() string { return d.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// InPeriod reports whether the expense date falls in the given month/year.
func (e Expense) InPeriod(month time.Month, year int) bool {
	return e.Date.Month() == month && e.Date.Year() == year
}

func (e Expense) Validate() error {
	if e.ID == "" {
		return errors.New("expense id cannot be empty")
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !e.Category.Valid() {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	return nil
}

// NewExpense validates raw form input and builds an Expense. Rules run in
// a fixed order and the first failure wins, so the user sees one error at
// a time: amount, category, description, date.
func NewExpense(rawAmount, rawCategory, rawDescription, rawDate string, today Date) (Expense, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(rawAmount))
	if err != nil || !amount.IsPositive() {
		return Expense{}, invalid(ErrInvalidAmount)
	}

	category := Category(strings.ToLower(strings.TrimSpace(rawCategory)))
	if !category.Valid() {
		return Expense{}, invalid(ErrInvalidCategory)
	}

	description := strings.TrimSpace(rawDescription)
	if description == "" {
		return Expense{}, invalid(ErrEmptyDescription)
	}

	if strings.TrimSpace(rawDate) == "" {
		return Expense{}, invalid(ErrMissingDate)
	}
	date, err := ParseDate(strings.TrimSpace(rawDate))
	if err != nil {
		return Expense{}, invalid(ErrMissingDate)
	}
	if date.After(today) {
		return Expense{}, invalid(ErrFutureDate)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return Expense{}, fmt.Errorf("generate expense id: %w", err)
	}

	return Expense{
		ID:          id.String(),
		Amount:      amount,
		Category:    category,
		Description: description,
		Date:        date,
	}, nil
}
