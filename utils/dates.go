// utils/dates.go
package utils

import (
	"strconv"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// DaysBetween counts calendar days from start to end in their own locations.
// Both dates are pinned to UTC noon so DST shifts cannot shorten a day.
func DaysBetween(start, end time.Time) int {
	return int(calendarNoon(end).Sub(calendarNoon(start)).Hours() / 24)
}

func calendarNoon(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// RelativeDay renders t as "Today", "Tomorrow" or "In N days" relative to now.
func RelativeDay(t, now time.Time) string {
	switch d := DaysBetween(now, t); {
	case d <= 0:
		return "Today"
	case d == 1:
		return "Tomorrow"
	default:
		return "In " + strconv.Itoa(d) + " days"
	}
}

