package analytics

import (
	"strings"
	"time"
)

// Period is a preset reporting window selected on the dashboard.
type Period string

const (
	PeriodAll           Period = "all"
	PeriodToday         Period = "today"
	PeriodWeek          Period = "week"  // last 7 days
	PeriodMonth         Period = "month" // last 30 days
	PeriodYear          Period = "year"  // last 365 days
	PeriodThisMonth     Period = "this_month"
	PeriodThisYear      Period = "this_year"
	PeriodPreviousMonth Period = "previous_month"
	PeriodPreviousYear  Period = "previous_year"
)

var knownPeriods = map[Period]struct{}{
	PeriodAll: {}, PeriodToday: {}, PeriodWeek: {}, PeriodMonth: {}, PeriodYear: {},
	PeriodThisMonth: {}, PeriodThisYear: {}, PeriodPreviousMonth: {}, PeriodPreviousYear: {},
}

// ParsePeriod maps a request token to a Period. Unknown or empty tokens fall
// back to PeriodAll. Dashes are accepted in place of underscores.
func ParsePeriod(token string) Period {
	p := Period(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(token)), "-", "_"))
	if _, ok := knownPeriods[p]; ok {
		return p
	}
	return PeriodAll
}

// DateRange is a half-open [From, To) interval; nil bounds are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// Range resolves the period against now. Calendar boundaries are taken in
// now's location.
func (p Period) Range(now time.Time) DateRange {
	y, m, d := now.Date()
	loc := now.Location()
	from := func(t time.Time) DateRange { return DateRange{From: &t} }
	between := func(a, b time.Time) DateRange { return DateRange{From: &a, To: &b} }

	switch p {
	case PeriodToday:
		return from(time.Date(y, m, d, 0, 0, 0, 0, loc))
	case PeriodWeek:
		return from(now.AddDate(0, 0, -7))
	case PeriodMonth:
		return from(now.AddDate(0, 0, -30))
	case PeriodYear:
		return from(now.AddDate(0, 0, -365))
	case PeriodThisMonth:
		return from(time.Date(y, m, 1, 0, 0, 0, 0, loc))
	case PeriodThisYear:
		return from(time.Date(y, time.January, 1, 0, 0, 0, 0, loc))
	case PeriodPreviousMonth:
		// time.Date normalizes month 0 to December of the previous year.
		return between(time.Date(y, m-1, 1, 0, 0, 0, 0, loc), time.Date(y, m, 1, 0, 0, 0, 0, loc))
	case PeriodPreviousYear:
		return between(time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc), time.Date(y, time.January, 1, 0, 0, 0, 0, loc))
	}
	return DateRange{}
}

func (p Period) forcesDaily() bool {
	switch p {
	case PeriodWeek, PeriodMonth, PeriodThisMonth, PeriodPreviousMonth:
		return true
	}
	return false
}

func (p Period) forcesMonthly() bool {
	switch p {
	case PeriodYear, PeriodThisYear, PeriodPreviousYear:
		return true
	}
	return false
}
