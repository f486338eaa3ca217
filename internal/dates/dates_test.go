package dates

import (
	"errors"
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_CalendarDate(t *testing.T) {
	got, err := Parse("2025-05-12")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equal(day(2025, time.May, 12)) {
		t.Errorf("Parse = %v, want 2025-05-12", got)
	}
}

func TestParse_Timestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-05-12T00:00:00Z", day(2025, time.May, 12)},
		{"2027-06-17T20:00:00.000+00:00", day(2027, time.June, 17)},
	}
	for _, tc := range tests {
		got, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if !got.Equal(tc.want) {
			t.Errorf("Parse(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, s := range []string{"2020-02-29", "2025-01-01", "2025-12-31"} {
		d, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := d.Format(Format); got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestParse_Malformed(t *testing.T) {
	for _, s := range []string{"", "12/05/2025", "2025-13-40", "2025-05-12T99:00:00Z"} {
		_, err := Parse(s)
		if err == nil {
			t.Fatalf("Parse(%q): expected error", s)
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q): error %T is not a *ParseError", s, err)
		}
	}
}

func TestPreviousBusinessDay(t *testing.T) {
	friday := day(2025, time.May, 16)
	tests := []struct {
		in, want time.Time
	}{
		{day(2025, time.May, 17), friday}, // Saturday
		{day(2025, time.May, 18), friday}, // Sunday
		{friday, friday},
		{day(2025, time.May, 19), day(2025, time.May, 19)}, // Monday
	}
	for _, tc := range tests {
		if got := PreviousBusinessDay(tc.in); !got.Equal(tc.want) {
			t.Errorf("PreviousBusinessDay(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestPreviousBusinessDay_Idempotent(t *testing.T) {
	d := day(2025, time.January, 1)
	for i := 0; i < 30; i++ {
		once := PreviousBusinessDay(d)
		if twice := PreviousBusinessDay(once); !twice.Equal(once) {
			t.Errorf("not idempotent for %v: %v then %v", d, once, twice)
		}
		d = d.AddDate(0, 0, 1)
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		in     time.Time
		months int
		want   time.Time
	}{
		{day(2025, time.May, 12), 3, day(2025, time.August, 12)},
		{day(2025, time.May, 12), 18, day(2026, time.November, 12)},
		{day(2025, time.November, 30), 2, day(2026, time.January, 30)},
		{day(2025, time.December, 15), 1, day(2026, time.January, 15)},
		// Day-of-month clamps to the end of a shorter target month.
		{day(2025, time.January, 31), 1, day(2025, time.February, 28)},
		{day(2024, time.January, 31), 1, day(2024, time.February, 29)},
		{day(2025, time.August, 31), 3, day(2025, time.November, 30)},
		{day(2025, time.May, 12), 0, day(2025, time.May, 12)},
	}
	for _, tc := range tests {
		if got := AddMonths(tc.in, tc.months); !got.Equal(tc.want) {
			t.Errorf("AddMonths(%v, %d) = %v, want %v",
				tc.in.Format(Format), tc.months, got.Format(Format), tc.want.Format(Format))
		}
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b time.Time
		want int
	}{
		{day(2025, time.May, 19), day(2025, time.August, 12), 85},
		{day(2025, time.May, 19), day(2025, time.November, 12), 177},
		{day(2025, time.May, 19), day(2025, time.May, 19), 0},
		{day(2025, time.May, 19), day(2025, time.May, 12), -7},
	}
	for _, tc := range tests {
		if got := DaysBetween(tc.a, tc.b); got != tc.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPreviousTradingDay(t *testing.T) {
	tests := []struct {
		in, want time.Time
	}{
		{day(2020, time.September, 10), day(2020, time.September, 9)},  // Thursday
		{day(2020, time.September, 11), day(2020, time.September, 10)}, // Friday
		{day(2020, time.September, 12), day(2020, time.September, 10)}, // Saturday
		{day(2020, time.September, 13), day(2020, time.September, 10)}, // Sunday
		{day(2020, time.September, 14), day(2020, time.September, 11)}, // Monday
	}
	for _, tc := range tests {
		if got := PreviousTradingDay(tc.in); !got.Equal(tc.want) {
			t.Errorf("PreviousTradingDay(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
