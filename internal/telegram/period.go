package telegram

import (
	"strings"
	"time"
)

// monthWindow returns the half-open unix-second window for the calendar
// month containing now, in UTC: first of the month up to (excluding) the
// first of the next one.
func monthWindow(now time.Time) (from, to int64) {
	year, month, _ := now.UTC().Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start.Unix(), start.AddDate(0, 1, 0).Unix()
}

// parseDay parses a YYYY-MM-DD date as UTC midnight.
func parseDay(s string) (time.Time, error) {
	return time.Parse("2006-01-02", strings.TrimSpace(s))
}
