package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Expense TransactionType = "EXPENSE"
	Income  TransactionType = "INCOME"

	// DefaultCategory is assigned to transactions recorded without a category.
	DefaultCategory = "Other"

	// DayLayout is the bucket key format for daily grouping.
	DayLayout = "2006-01-02"
	// MonthLayout is the label format for calendar-month periods.
	MonthLayout = "2006-01"
)

type (
	TransactionType string

	// Transaction is a single user transaction as read from a transaction source.
	// Dates are timezone-naive: bucketing uses the wall-clock calendar date.
	Transaction struct {
		ID          string          `json:"id"`
		UserID      string          `json:"userId"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description,omitempty"`
		Date        time.Time       `json:"date"`
		Type        TransactionType `json:"type,omitempty"`
	}

	// DateRange is a closed time range, both ends inclusive.
	DateRange struct {
		Start time.Time
		End   time.Time
	}

	// Period is a closed calendar range with a stable label ("2024-02", "week", ...).
	Period struct {
		Label     string    `json:"label"`
		StartDate time.Time `json:"startDate"`
		EndDate   time.Time `json:"endDate"`
	}
)

var (
	ErrEmptyUser      = errors.New("empty user id")
	ErrNegativeAmount = errors.New("negative amount")
	ErrZeroDate       = errors.New("date cannot be zero")
	ErrUnknownType    = errors.New("unknown transaction type")
)

// Normalize returns the transaction with ingestion defaults applied: a blank
// category becomes DefaultCategory and the type is upper-cased.
func (t Transaction) Normalize() Transaction {
	t.Category = strings.TrimSpace(t.Category)
	if t.Category == "" {
		t.Category = DefaultCategory
	}
	t.Type = TransactionType(strings.ToUpper(strings.TrimSpace(string(t.Type))))
	return t
}

// NormalizeAll applies Normalize to every transaction in place and returns the slice.
func NormalizeAll(txs []Transaction) []Transaction {
	for i := range txs {
		txs[i] = txs[i].Normalize()
	}
	return txs
}

// IsSpendEligible reports whether the transaction counts toward spending.
// Records written before types existed carry no type and are treated as expenses.
func (t Transaction) IsSpendEligible() bool {
	return t.Type == Expense || t.Type == ""
}

func (t Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return ErrEmptyUser
	}
	if t.Amount < 0 {
		return ErrNegativeAmount
	}
	if t.Date.IsZero() {
		return ErrZeroDate
	}
	switch t.Type {
	case Expense, Income, "":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, t.Type)
	}
	return nil
}

// Range returns the period bounds as a DateRange.
func (p Period) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// Contains reports whether t falls inside the period, both ends inclusive.
func (p Period) Contains(t time.Time) bool {
	return p.Range().Contains(t)
}

// Days returns the number of calendar days covered by the period, inclusive.
func (p Period) Days() int {
	if p.EndDate.Before(p.StartDate) {
		return 0
	}
	return int(dateOnly(p.EndDate).Sub(dateOnly(p.StartDate)).Hours()/24) + 1
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// AllTime is the period used by analytics that are not bounded by a window.
func AllTime() Period {
	return Period{
		Label:     "all",
		StartDate: time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(9999, time.December, 31, 23, 59, 59, 999999999, time.UTC),
	}
}

// StartOfDay returns midnight of t's calendar date in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last representable instant of t's calendar date.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 999999999, t.Location())
}

// DayKey returns the calendar date of t as YYYY-MM-DD, ignoring the time of day.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// dateOnly projects t's wall-clock date onto UTC so day arithmetic ignores DST.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	DayLayout,
}

// ParseTimestamp parses the date formats accepted by sources and seed files.
// Values without an explicit offset are read as wall-clock time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
