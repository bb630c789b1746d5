package services

import (
	"time"

	"github.com/robfig/cron/v3"
)

// oneShot is a cron.Schedule that fires once at an absolute instant.
type oneShot struct {
	at     time.Time
	handed bool
}

var _ cron.Schedule = (*oneShot)(nil)

func at(t time.Time) *oneShot {
	return &oneShot{at: t}
}

// Next is only ever called from the cron run goroutine.
//
// A deadline that has already passed when cron first looks at it is handed out
// once so the job runs immediately instead of being dropped. After the
// deadline has been handed out and reached, the zero time retires the entry.
func (s *oneShot) Next(t time.Time) time.Time {
	if t.Before(s.at) {
		s.handed = true
		return s.at
	}
	if !s.handed {
		s.handed = true
		return s.at
	}
	return time.Time{}
}
