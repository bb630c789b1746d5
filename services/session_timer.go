package services

import (
	"sync"
	"time"
)

const (
	tickInterval         = time.Second
	lowRemainingSeconds  = 5 * 60
	MsgSessionHalfway    = "Halfway through your treatment session!"
	MsgSessionFiveLeft   = "5 minutes left in your treatment session!"
	MsgSessionCompleted  = "Treatment session completed! Great job!"
	NotificationHalfway  = "halfway"
	NotificationFiveLeft = "five_minutes_left"
	NotificationComplete = "completed"
)

// TimerState is a snapshot of a session timer.
type TimerState struct {
	IsActive          bool       `json:"isActive"`
	RemainingSeconds  int        `json:"remainingSeconds"`
	TotalSeconds      int        `json:"totalSeconds"`
	ProgressPercent   float64    `json:"progressPercent"`
	StartedAt         *time.Time `json:"startedAt,omitempty"`
	EstimatedEnd      *time.Time `json:"estimatedEnd,omitempty"`
	CompletedSessions int        `json:"completedSessions"`
}

type TimerNotification struct {
	Kind    string     `json:"kind"`
	Message string     `json:"message"`
	State   TimerState `json:"state"`
}

// SessionTimer counts one treatment session down on a one second cadence.
//
// Idle -> Running on Start, Running -> Idle on Stop, and Running -> Completed
// when the countdown reaches zero. Completed looks like Idle with the
// completed counter bumped. Every Start opens a new generation; ticks carrying
// an older generation, or arriving while inactive, do nothing.
type SessionTimer struct {
	mu        sync.Mutex
	active    bool
	gen       uint64
	remaining int
	total     int
	startedAt time.Time
	endsAt    time.Time
	completed int

	now    func() time.Time
	notify func(TimerNotification)
}

func NewSessionTimer(notify func(TimerNotification)) *SessionTimer {
	if notify == nil {
		notify = func(TimerNotification) {}
	}
	return &SessionTimer{now: time.Now, notify: notify}
}

// Start begins a session of the given length in minutes and returns its generation.
func (t *SessionTimer) Start(minutes int) (uint64, error) {
	if minutes <= 0 {
		return 0, &ValidationError{Field: "duration", Message: "Duration must be a positive number of minutes"}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		return 0, ErrSessionActive
	}

	now := t.now()
	t.gen++
	t.active = true
	t.total = minutes * 60
	t.remaining = t.total
	t.startedAt = now
	t.endsAt = now.Add(time.Duration(minutes) * time.Minute)
	return t.gen, nil
}

// Stop ends the running session without counting it as completed.
func (t *SessionTimer) Stop() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reset()
	return t.snapshot()
}

// Tick advances the current session by one second.
func (t *SessionTimer) Tick() TimerState {
	t.mu.Lock()
	gen := t.gen
	t.mu.Unlock()
	state, _ := t.tick(gen)
	return state
}

// tick advances generation gen by one second. It reports false once the
// session is no longer running so the driving loop can exit.
func (t *SessionTimer) tick(gen uint64) (TimerState, bool) {
	t.mu.Lock()
	if !t.active || gen != t.gen {
		state := t.snapshot()
		t.mu.Unlock()
		return state, false
	}

	t.remaining--
	var fired []TimerNotification
	if t.remaining == t.total/2 {
		fired = append(fired, TimerNotification{Kind: NotificationHalfway, Message: MsgSessionHalfway})
	}
	if t.remaining == lowRemainingSeconds {
		fired = append(fired, TimerNotification{Kind: NotificationFiveLeft, Message: MsgSessionFiveLeft})
	}
	running := true
	if t.remaining <= 0 {
		t.completed++
		fired = append(fired, TimerNotification{Kind: NotificationComplete, Message: MsgSessionCompleted})
		t.reset()
		running = false
	}
	state := t.snapshot()
	t.mu.Unlock()

	for _, n := range fired {
		n.State = state
		t.notify(n)
	}
	return state, running
}

func (t *SessionTimer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshot()
}

// StartedAt returns when the current or most recent session began.
func (t *SessionTimer) StartedAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.startedAt
}

func (t *SessionTimer) reset() {
	t.active = false
	t.remaining = 0
	t.endsAt = time.Time{}
}

func (t *SessionTimer) snapshot() TimerState {
	s := TimerState{
		IsActive:          t.active,
		RemainingSeconds:  t.remaining,
		TotalSeconds:      t.total,
		CompletedSessions: t.completed,
	}
	if t.active {
		if t.total > 0 {
			s.ProgressPercent = float64(t.total-t.remaining) / float64(t.total) * 100
		}
		started, ends := t.startedAt, t.endsAt
		s.StartedAt = &started
		s.EstimatedEnd = &ends
	}
	return s
}
