package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelativeDay(t *testing.T) {
	now := time.Date(2030, time.March, 4, 22, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "later today", t: now.Add(time.Hour), want: "Today"},
		{name: "just after midnight", t: now.Add(2 * time.Hour), want: "Tomorrow"},
		{name: "three days", t: now.AddDate(0, 0, 3), want: "In 3 days"},
		{name: "already past", t: now.Add(-48 * time.Hour), want: "Today"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RelativeDay(tt.t, now))
		})
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2030, time.March, 4, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 0, DaysBetween(start, start.Add(-time.Hour)))
	assert.Equal(t, 1, DaysBetween(start, start.Add(2*time.Minute)))
	assert.Equal(t, 7, DaysBetween(start, start.AddDate(0, 0, 7)))
	assert.Equal(t, time.Date(2030, time.March, 4, 0, 0, 0, 0, time.UTC), BeginningOfDay(start))
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on 2030-03-10, so that calendar day is 23h long.
	now := time.Date(2030, time.March, 10, 23, 30, 0, 0, ny)
	tomorrow := time.Date(2030, time.March, 11, 22, 0, 0, 0, ny)
	assert.Equal(t, 1, DaysBetween(now, tomorrow))
	assert.Equal(t, "Tomorrow", RelativeDay(tomorrow, now))

	// Fall back on 2030-11-03 makes that day 25h long.
	now = time.Date(2030, time.November, 2, 10, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(now, time.Date(2030, time.November, 4, 1, 0, 0, 0, ny)))
}
