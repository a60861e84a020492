package core

import (
	"errors"
	"testing"
	"time"
)

func TestTransactionNormalize(t *testing.T) {
	cases := []struct {
		in       Transaction
		category string
		typ      TransactionType
	}{
		{Transaction{Category: "food", Type: "expense"}, "food", Expense},
		{Transaction{Category: "  ", Type: ""}, DefaultCategory, ""},
		{Transaction{Category: "", Type: " Income "}, DefaultCategory, Income},
	}
	for i, tc := range cases {
		got := tc.in.Normalize()
		if got.Category != tc.category || got.Type != tc.typ {
			t.Fatalf("case %d: got category=%q type=%q", i, got.Category, got.Type)
		}
	}
}

func TestIsSpendEligible(t *testing.T) {
	cases := []struct {
		typ TransactionType
		ok  bool
	}{
		{Expense, true},
		{"", true}, // legacy untyped record
		{Income, false},
	}
	for _, tc := range cases {
		if got := (Transaction{Type: tc.typ}).IsSpendEligible(); got != tc.ok {
			t.Fatalf("type %q: expected %v, got %v", tc.typ, tc.ok, got)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{UserID: "u1", Amount: 10, Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), Type: Expense}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []struct {
		tx   Transaction
		want error
	}{
		{Transaction{Amount: 1, Date: good.Date}, ErrEmptyUser},
		{Transaction{UserID: "u", Amount: -1, Date: good.Date}, ErrNegativeAmount},
		{Transaction{UserID: "u", Amount: 1}, ErrZeroDate},
		{Transaction{UserID: "u", Amount: 1, Date: good.Date, Type: "TRANSFER"}, ErrUnknownType},
	}
	for i, tc := range bads {
		if err := tc.tx.Validate(); !errors.Is(err, tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, err)
		}
	}
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := Period{
		StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   EndOfDay(time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)),
	}
	if !p.Contains(p.StartDate) || !p.Contains(p.EndDate) {
		t.Fatalf("bounds must be inclusive")
	}
	if p.Contains(p.EndDate.Add(time.Nanosecond)) {
		t.Fatalf("instant after end must be excluded")
	}
	if p.Days() != 29 {
		t.Fatalf("expected 29 days, got %d", p.Days())
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-03-04", time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2025-03-04 10:30:00", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)},
		{"2025-03-04T10:30:00", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)},
		{"2025-03-04T10:30:00Z", time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		got, err := ParseTimestamp(tc.in, time.UTC)
		if err != nil || !got.Equal(tc.want) {
			t.Fatalf("%q: got %v err=%v", tc.in, got, err)
		}
	}
	if _, err := ParseTimestamp("yesterday", time.UTC); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestFetchErrorMatchesTaxonomyAndCause(t *testing.T) {
	cause := errors.New("connection refused")
	var err error = &FetchError{Source: "sqlite", Period: "2025-01", Err: cause}
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("expected ErrUpstreamFetch")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be reachable")
	}
	if errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("fetch error must not look like invalid argument")
	}
}
