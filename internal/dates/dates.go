// Package dates holds the calendar arithmetic used by the dividend-capture
// return calculator. Dates are represented as time.Time values pinned to
// midnight UTC so day deltas are exact.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// Format is the calendar-date layout used across the Schwab API payloads.
const Format = "2006-01-02"

// ParseError reports a date string that matched neither supported layout.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing date %q: %v", e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts the two date shapes the API emits into a midnight-UTC time:
// plain calendar dates ("2025-05-12") and full timestamps
// ("2027-06-17T20:00:00.000+00:00"). The presence of the time separator
// selects the branch.
func Parse(s string) (time.Time, error) {
	if strings.ContainsRune(s, 'T') {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, &ParseError{Value: s, Err: err}
		}
		return Midnight(t.UTC()), nil
	}
	t, err := time.Parse(Format, s)
	if err != nil {
		return time.Time{}, &ParseError{Value: s, Err: err}
	}
	return t, nil
}

// Midnight truncates t to its calendar day in UTC.
func Midnight(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current day at midnight UTC.
func Today() time.Time { return Midnight(time.Now()) }

// PreviousBusinessDay maps Saturday and Sunday to the preceding Friday and
// leaves weekdays untouched. Ex-dividend dates and option assignment never
// land on a weekend; market holidays are not considered.
func PreviousBusinessDay(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, -2)
	}
	return d
}

// AddMonths projects d forward by whole calendar months, keeping the
// day-of-month. When the target month is shorter the day is clamped to its
// last day (Jan 31 + 1 month = Feb 28), the usual financial-calendar rule.
func AddMonths(d time.Time, months int) time.Time {
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := d.Day()
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	// Day zero of the next month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the whole days from a to b, negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Midnight(b).Sub(Midnight(a)).Hours() / 24)
}

// PreviousTradingDay returns the last completed trading session before t:
// Friday's session for a weekend or a Monday, otherwise the prior day.
func PreviousTradingDay(t time.Time) time.Time {
	switch t.Weekday() {
	case time.Monday:
		return t.AddDate(0, 0, -3)
	case time.Saturday:
		return t.AddDate(0, 0, -2)
	case time.Sunday:
		return t.AddDate(0, 0, -3)
	}
	return t.AddDate(0, 0, -1)
}
