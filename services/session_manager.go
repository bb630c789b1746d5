package services

import (
	"context"
	"log"
	"sync"
	"time"
)

const subscriberBuffer = 8

// SessionUpdate is pushed to subscribers on every tick, notification and stop.
type SessionUpdate struct {
	Type    string     `json:"type"` // tick, notification, stopped, started
	Kind    string     `json:"kind,omitempty"`
	Message string     `json:"message,omitempty"`
	State   TimerState `json:"state"`
}

// CompletedSession is handed to a SessionStore when a timer reaches zero.
type CompletedSession struct {
	UserID      string
	Duration    int // in minutes
	StartedAt   time.Time
	CompletedAt time.Time
}

type SessionStore interface {
	SaveCompleted(ctx context.Context, s CompletedSession) error
}

// SessionManager owns one SessionTimer per user and fans its updates out to
// subscribers such as websocket connections.
type SessionManager struct {
	ctx    context.Context
	cancel context.CancelFunc
	store  SessionStore

	mu     sync.Mutex
	timers map[string]*managedTimer
}

type managedTimer struct {
	timer *SessionTimer
	subs  map[chan SessionUpdate]struct{}
}

func NewSessionManager(store SessionStore) *SessionManager {
	ctx, cancel := context.WithCancel(context.Background())
	return &SessionManager{
		ctx:    ctx,
		cancel: cancel,
		store:  store,
		timers: make(map[string]*managedTimer),
	}
}

// Shutdown halts every running countdown.
func (m *SessionManager) Shutdown() {
	m.cancel()
}

func (m *SessionManager) get(userID string) *managedTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	mt, ok := m.timers[userID]
	if !ok {
		mt = &managedTimer{subs: make(map[chan SessionUpdate]struct{})}
		mt.timer = NewSessionTimer(func(n TimerNotification) {
			m.onNotification(userID, mt, n)
		})
		m.timers[userID] = mt
	}
	return mt
}

func (m *SessionManager) StartSession(userID string, minutes int) (TimerState, error) {
	mt := m.get(userID)
	gen, err := mt.timer.Start(minutes)
	if err != nil {
		return mt.timer.State(), err
	}

	go m.drive(userID, mt, gen)

	state := mt.timer.State()
	m.publish(mt, SessionUpdate{Type: "started", State: state})
	log.Printf("[TIMER] User %s started a %d minute session", userID, minutes)
	return state, nil
}

func (m *SessionManager) StopSession(userID string) (TimerState, error) {
	mt := m.get(userID)
	if !mt.timer.State().IsActive {
		return mt.timer.State(), ErrNoSession
	}
	state := mt.timer.Stop()
	m.publish(mt, SessionUpdate{Type: "stopped", State: state})
	log.Printf("[TIMER] User %s stopped their session", userID)
	return state, nil
}

func (m *SessionManager) State(userID string) TimerState {
	return m.get(userID).timer.State()
}

// Subscribe returns a channel of updates for userID and a func to release it.
func (m *SessionManager) Subscribe(userID string) (<-chan SessionUpdate, func()) {
	mt := m.get(userID)
	ch := make(chan SessionUpdate, subscriberBuffer)

	m.mu.Lock()
	mt.subs[ch] = struct{}{}
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(mt.subs, ch)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *SessionManager) drive(userID string, mt *managedTimer, gen uint64) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			state, running := mt.timer.tick(gen)
			if !running {
				return
			}
			m.publish(mt, SessionUpdate{Type: "tick", State: state})
		}
	}
}

func (m *SessionManager) onNotification(userID string, mt *managedTimer, n TimerNotification) {
	m.publish(mt, SessionUpdate{Type: "notification", Kind: n.Kind, Message: n.Message, State: n.State})

	if n.Kind != NotificationComplete || m.store == nil {
		return
	}
	done := CompletedSession{
		UserID:      userID,
		Duration:    n.State.TotalSeconds / 60,
		StartedAt:   mt.timer.StartedAt(),
		CompletedAt: time.Now(),
	}
	if err := m.store.SaveCompleted(m.ctx, done); err != nil {
		log.Printf("[TIMER] Failed to record completed session for %s: %v", userID, err)
	}
}

// publish never blocks: a subscriber that is not keeping up misses updates.
func (m *SessionManager) publish(mt *managedTimer, u SessionUpdate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range mt.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
