package utils

import (
	"strings"
	"time"
)

// DateLayout is the only calendar-date format accepted or emitted by the API.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

const secondsPerDay = 24 * 60 * 60

// Nights counts the nights in the half-open stay [start, end) in whole Unix
// days. time.Duration saturates past ~292 years.
func Nights(start, end time.Time) int {
	return int((end.Unix() - start.Unix()) / secondsPerDay)
}
