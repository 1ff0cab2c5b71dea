package calculator

import (
	"errors"
	"math"
	"strings"
	"time"
)

// dateLayouts are tried in order. Values without an offset are read as UTC.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate reads an ISO-8601 timestamp or date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// DaysBetween returns the whole days from `from` to `to`, floored toward negative infinity,
// so 36 hours ago is 1 day and 12 hours ahead is -1 day.
func DaysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// MonthStart truncates t to 00:00 UTC on the first of its month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// MonthKey formats t as YYYY-MM.
func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

// MonthLabel formats t as "Jan 2006".
func MonthLabel(t time.Time) string {
	return t.UTC().Format("Jan 2006")
}

// TrailingMonths returns the first day of each of the n months ending at now's month, oldest first.
func TrailingMonths(now time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	end := MonthStart(now)
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[i] = end.AddDate(0, -(n - 1 - i), 0)
	}
	return months
}
