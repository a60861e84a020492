package analytics

import (
	"fmt"
	"strings"
	"time"

	"spendwise/internal/core"
)

// Relative period tokens accepted by Resolve.
const (
	TokenWeek  = "week"
	TokenMonth = "month"
	TokenYear  = "year"

	// UnitMonth is the only series unit supported by ResolveSeries.
	UnitMonth = "month"
)

const (
	weekDays = 7
	yearDays = 365
)

// PeriodSpec selects a period: either a relative Token or an explicit
// calendar month. Zero Year or Month default to the current year or month.
type PeriodSpec struct {
	Token string
	Year  int
	Month int
}

// Resolver turns period specs into concrete periods relative to a clock.
type Resolver struct {
	now func() time.Time
}

// NewResolver returns a Resolver reading the reference date from now.
// A nil now uses time.Now.
func NewResolver(now func() time.Time) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{now: now}
}

// Now returns the reference instant.
func (r *Resolver) Now() time.Time {
	return r.now()
}

// Resolve converts spec into a period.
func (r *Resolver) Resolve(spec PeriodSpec) (core.Period, error) {
	if spec.Token != "" {
		return r.ResolveToken(spec.Token)
	}
	return r.ResolveMonth(spec.Year, spec.Month)
}

// ResolveMonth returns the full calendar month year-month. Zero values take
// the current year or month.
func (r *Resolver) ResolveMonth(year, month int) (core.Period, error) {
	now := r.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}
	if year < 1 || year > 9999 {
		return core.Period{}, core.InvalidArgument("year %d out of range", year)
	}
	if month < 1 || month > 12 {
		return core.Period{}, core.InvalidArgument("month %d out of range 1-12", month)
	}
	return CalendarMonth(year, time.Month(month), now.Location()), nil
}

// ResolveToken resolves a relative token against the reference date. Every
// window ends at the end of the reference day.
//
//	week  trailing 7 days including today
//	month same day one calendar month earlier, clamped to the month's last day
//	year  trailing 365 days including today
func (r *Resolver) ResolveToken(token string) (core.Period, error) {
	now := r.now()
	today := core.StartOfDay(now)
	var start time.Time
	switch strings.ToLower(strings.TrimSpace(token)) {
	case TokenWeek:
		start = today.AddDate(0, 0, -(weekDays - 1))
	case TokenMonth:
		start = addMonthsClamped(today, -1)
	case TokenYear:
		start = today.AddDate(0, 0, -(yearDays - 1))
	default:
		return core.Period{}, core.InvalidArgument("unknown period %q", token)
	}
	return core.Period{
		Label:     strings.ToLower(strings.TrimSpace(token)),
		StartDate: start,
		EndDate:   core.EndOfDay(now),
	}, nil
}

// Trailing returns the last days calendar days, today included.
func (r *Resolver) Trailing(days int) (core.Period, error) {
	if days <= 0 {
		return core.Period{}, core.InvalidArgument("window must be at least one day, got %d", days)
	}
	now := r.now()
	return core.Period{
		Label:     fmt.Sprintf("last-%d-days", days),
		StartDate: core.StartOfDay(now).AddDate(0, 0, -(days - 1)),
		EndDate:   core.EndOfDay(now),
	}, nil
}

// MaxSeriesLength caps ResolveSeries, ten years of months.
const MaxSeriesLength = 120

// ResolveSeries returns n contiguous full calendar months ordered oldest to
// newest, the last one being the current month.
func (r *Resolver) ResolveSeries(n int, unit string) ([]core.Period, error) {
	if n <= 0 {
		return nil, core.InvalidArgument("series length must be positive, got %d", n)
	}
	if n > MaxSeriesLength {
		return nil, core.InvalidArgument("series length must be at most %d, got %d", MaxSeriesLength, n)
	}
	if unit != UnitMonth {
		return nil, core.InvalidArgument("unsupported series unit %q", unit)
	}
	now := r.now()
	periods := make([]core.Period, n)
	for i := 0; i < n; i++ {
		offset := n - 1 - i
		// time.Date normalises month underflow into earlier years
		first := time.Date(now.Year(), now.Month()-time.Month(offset), 1, 0, 0, 0, 0, now.Location())
		periods[i] = CalendarMonth(first.Year(), first.Month(), now.Location())
	}
	return periods, nil
}

// CalendarMonth returns the period from the first day of month at 00:00 to the
// end of its last day. The last day is day 0 of the following month, so month
// length and leap years come from the calendar.
func CalendarMonth(year int, month time.Month, loc *time.Location) core.Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	return core.Period{
		Label:     start.Format(core.MonthLayout),
		StartDate: start,
		EndDate:   core.EndOfDay(lastDay),
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := time.Date(first.Year(), first.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
