package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationLog struct {
	got []TimerNotification
}

func (l *notificationLog) record(n TimerNotification) { l.got = append(l.got, n) }

func (l *notificationLog) kinds() []string {
	out := make([]string, 0, len(l.got))
	for _, n := range l.got {
		out = append(out, n.Kind)
	}
	return out
}

func tickN(timer *SessionTimer, n int) TimerState {
	var s TimerState
	for i := 0; i < n; i++ {
		s = timer.Tick()
	}
	return s
}

func TestSessionTimer_StartValidation(t *testing.T) {
	timer := NewSessionTimer(nil)

	for _, minutes := range []int{0, -1} {
		_, err := timer.Start(minutes)
		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.False(t, timer.State().IsActive)
	}

	_, err := timer.Start(1)
	require.NoError(t, err)
	_, err = timer.Start(1)
	assert.ErrorIs(t, err, ErrSessionActive)
}

func TestSessionTimer_RunsToCompletion(t *testing.T) {
	log := &notificationLog{}
	timer := NewSessionTimer(log.record)

	_, err := timer.Start(1)
	require.NoError(t, err)

	state := timer.State()
	assert.True(t, state.IsActive)
	assert.Equal(t, 60, state.RemainingSeconds)
	assert.Equal(t, 60, state.TotalSeconds)
	require.NotNil(t, state.StartedAt)
	require.NotNil(t, state.EstimatedEnd)

	state = tickN(timer, 30)
	assert.Equal(t, 30, state.RemainingSeconds)
	assert.InDelta(t, 50.0, state.ProgressPercent, 0.001)
	assert.Equal(t, []string{NotificationHalfway}, log.kinds())
	assert.Equal(t, MsgSessionHalfway, log.got[0].Message)

	state = tickN(timer, 30)
	assert.False(t, state.IsActive)
	assert.Equal(t, 0, state.RemainingSeconds)
	assert.Equal(t, 1, state.CompletedSessions)
	assert.Equal(t, []string{NotificationHalfway, NotificationComplete}, log.kinds())
	assert.Equal(t, MsgSessionCompleted, log.got[1].Message)

	// ticks after completion do nothing
	state = tickN(timer, 5)
	assert.False(t, state.IsActive)
	assert.Equal(t, 1, state.CompletedSessions)
	assert.Len(t, log.got, 2)
}

func TestSessionTimer_FiveMinutesLeft(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		ticks   int
		want    []string
	}{
		{name: "twenty minutes", minutes: 20, ticks: 15 * 60, want: []string{NotificationHalfway, NotificationFiveLeft}},
		{name: "ten minutes fires both at once", minutes: 10, ticks: 5 * 60, want: []string{NotificationHalfway, NotificationFiveLeft}},
		{name: "five minutes never reports five left", minutes: 5, ticks: 5*60 - 1, want: []string{NotificationHalfway}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &notificationLog{}
			timer := NewSessionTimer(log.record)
			_, err := timer.Start(tt.minutes)
			require.NoError(t, err)

			tickN(timer, tt.ticks)
			assert.Equal(t, tt.want, log.kinds())
		})
	}
}

func TestSessionTimer_StopDoesNotCount(t *testing.T) {
	log := &notificationLog{}
	timer := NewSessionTimer(log.record)

	_, err := timer.Start(2)
	require.NoError(t, err)
	tickN(timer, 10)

	state := timer.Stop()
	assert.False(t, state.IsActive)
	assert.Equal(t, 0, state.CompletedSessions)
	assert.Nil(t, state.StartedAt)
	assert.Empty(t, log.got)

	state = timer.Tick()
	assert.False(t, state.IsActive)
	assert.Equal(t, 0, state.RemainingSeconds)
}

func TestSessionTimer_StaleGenerationIgnored(t *testing.T) {
	timer := NewSessionTimer(nil)

	first, err := timer.Start(1)
	require.NoError(t, err)
	timer.Stop()

	second, err := timer.Start(1)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	state, running := timer.tick(first)
	assert.False(t, running)
	assert.Equal(t, 60, state.RemainingSeconds)

	state, running = timer.tick(second)
	assert.True(t, running)
	assert.Equal(t, 59, state.RemainingSeconds)
}
