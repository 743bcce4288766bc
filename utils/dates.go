// utils/dates.go
package utils

import (
	"strconv"
	"strings"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ClosingTimeToday converts an "HH:MM" time-of-day into a concrete instant on
// the same day as now. Returns the zero time for malformed input.
func ClosingTimeToday(closing string, now time.Time) time.Time {
	parts := strings.SplitN(closing, ":", 2)
	if len(parts) != 2 {
		return time.Time{}
	}
	hour, err1 := strconv.Atoi(parts[0])
	minute, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return time.Time{}
	}
	year, month, day := now.Date()
	return time.Date(year, month, day, hour, minute, 0, 0, now.Location())
}
