package pace

import (
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date format used across the toolkit. Dates
// carry no time-of-day; comparisons are by calendar day only.
const DateLayout = "2006-01-02"

const weekHours = 7 * 24

// ParseDate parses a YYYY-MM-DD calendar date as UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// WeeksBetween returns the (possibly fractional) number of weeks from a to b,
// clamped at zero when b precedes a.
func WeeksBetween(a, b time.Time) float64 {
	w := b.Sub(a).Hours() / weekHours
	if w < 0 {
		return 0
	}
	return w
}

// AddWeeks shifts a date forward by a fractional number of weeks.
func AddWeeks(t time.Time, weeks float64) time.Time {
	return t.Add(time.Duration(weeks * weekHours * float64(time.Hour)))
}
