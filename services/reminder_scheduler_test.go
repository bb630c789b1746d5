package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"nebula-backend/models"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	channel   string
	err       error
	mu        sync.Mutex
	sent      []TreatmentReminder
	delivered chan TreatmentReminder
}

func newRecordingNotifier(err error) *recordingNotifier {
	return &recordingNotifier{channel: "email", err: err, delivered: make(chan TreatmentReminder, 8)}
}

func (n *recordingNotifier) Channel() string { return n.channel }

func (n *recordingNotifier) Notify(_ context.Context, r TreatmentReminder) error {
	n.mu.Lock()
	n.sent = append(n.sent, r)
	n.mu.Unlock()
	n.delivered <- r
	return n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type memoryLog struct {
	mu      sync.Mutex
	entries []models.ReminderLog
}

func (l *memoryLog) Record(_ context.Context, entry *models.ReminderLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, *entry)
	return nil
}

func (l *memoryLog) all() []models.ReminderLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.ReminderLog(nil), l.entries...)
}

type recordingReporter struct {
	mu   sync.Mutex
	errs []error
}

func (r *recordingReporter) Report(err error, _ map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recordingReporter) reported() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestReminderScheduler_Schedule(t *testing.T) {
	now := time.Date(2030, time.March, 4, 9, 0, 0, 0, time.UTC)
	s := NewReminderScheduler(SchedulerOptions{Now: fixedClock(now)})

	valid := func(treatment time.Time) ScheduleRequest {
		return ScheduleRequest{UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: treatment, Duration: 45}
	}

	tests := []struct {
		name      string
		req       ScheduleRequest
		wantErr   string
		wantCheck func(error) bool
	}{
		{name: "well ahead", req: valid(now.Add(2 * time.Hour))},
		{name: "just over the lead", req: valid(now.Add(31 * time.Minute))},
		{
			name:      "exactly the lead",
			req:       valid(now.Add(30 * time.Minute)),
			wantErr:   "Reminder time is in the past",
			wantCheck: IsPastTime,
		},
		{
			name:      "inside the lead",
			req:       valid(now.Add(10 * time.Minute)),
			wantErr:   "Reminder time is in the past",
			wantCheck: IsPastTime,
		},
		{
			name:      "treatment in the past",
			req:       valid(now.Add(-time.Minute)),
			wantErr:   "Treatment time must be in the future",
			wantCheck: IsPastTime,
		},
		{
			name:      "everything missing",
			req:       ScheduleRequest{},
			wantErr:   "Missing required fields: treatmentDateTime, duration, userEmail, userName",
			wantCheck: IsValidation,
		},
		{
			name:      "blank name",
			req:       ScheduleRequest{UserEmail: "ana@example.com", UserName: "   ", TreatmentTime: now.Add(time.Hour), Duration: 30},
			wantErr:   "Missing required fields: userName",
			wantCheck: IsValidation,
		},
		{
			name:      "malformed phone",
			req:       ScheduleRequest{UserEmail: "ana@example.com", UserName: "Ana", UserPhone: "call me", TreatmentTime: now.Add(time.Hour), Duration: 30},
			wantErr:   "Invalid phone number format",
			wantCheck: IsValidation,
		},
		{
			name:      "negative duration",
			req:       ScheduleRequest{UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: now.Add(time.Hour), Duration: -5},
			wantErr:   "Duration must be a positive number of minutes",
			wantCheck: IsValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := s.Pending()
			got, err := s.Schedule(tt.req)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantErr, err.Error())
				assert.True(t, tt.wantCheck(err))
				assert.Equal(t, before, s.Pending(), "a rejected request must not leave a record behind")
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.req.TreatmentTime.Add(-30*time.Minute), got.ReminderTime)
			assert.Equal(t, before+1, s.Pending())
		})
	}
}

func TestReminderScheduler_ListAndCancel(t *testing.T) {
	now := time.Date(2030, time.March, 4, 9, 0, 0, 0, time.UTC)
	s := NewReminderScheduler(SchedulerOptions{Now: fixedClock(now)})

	schedule := func(email string, in time.Duration) *ScheduledReminder {
		r, err := s.Schedule(ScheduleRequest{UserEmail: email, UserName: "X", TreatmentTime: now.Add(in), Duration: 30})
		require.NoError(t, err)
		return r
	}

	late := schedule("a@example.com", 5*time.Hour)
	early := schedule("a@example.com", 2*time.Hour)
	other := schedule("b@example.com", 3*time.Hour)

	listA := s.ListForUser("a@example.com")
	require.Len(t, listA, 2)
	assert.Equal(t, early.ID, listA[0].ID)
	assert.Equal(t, late.ID, listA[1].ID)
	assert.Equal(t, now.Add(2*time.Hour), listA[0].TreatmentTime)
	assert.Equal(t, 30, listA[0].Duration)

	listB := s.ListForUser("b@example.com")
	require.Len(t, listB, 1)
	assert.Equal(t, other.ID, listB[0].ID)

	nobody := s.ListForUser("nobody@example.com")
	assert.NotNil(t, nobody)
	assert.Empty(t, nobody)

	require.NoError(t, s.Cancel(early.ID))
	listA = s.ListForUser("a@example.com")
	require.Len(t, listA, 1)
	assert.Equal(t, late.ID, listA[0].ID)

	err := s.Cancel(early.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Reminder not found", err.Error())

	assert.True(t, IsNotFound(s.Cancel(uuid.New())))
	assert.Equal(t, 2, s.Pending())
}

func TestReminderScheduler_ScheduleListCancelFlow(t *testing.T) {
	now := time.Date(2030, time.March, 4, 9, 0, 0, 0, time.UTC)
	s := NewReminderScheduler(SchedulerOptions{Now: fixedClock(now)})

	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: now.Add(time.Hour), Duration: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*time.Minute), got.ReminderTime)

	list := s.ListForUser("ana@example.com")
	require.Len(t, list, 1)
	assert.Equal(t, got.ID, list[0].ID)

	require.NoError(t, s.Cancel(got.ID))
	assert.Empty(t, s.ListForUser("ana@example.com"))
	assert.True(t, IsNotFound(s.Cancel(got.ID)))
}

func startScheduler(t *testing.T, s *ReminderScheduler) (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Start(ctx)
	}()
	return func() {
		cancel()
		select {
		case <-done:
		case <-time.After(15 * time.Second):
			t.Fatal("scheduler did not stop")
		}
	}
}

func waitDelivery(t *testing.T, n *recordingNotifier) TreatmentReminder {
	t.Helper()
	select {
	case r := <-n.delivered:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("reminder was not delivered")
		return TreatmentReminder{}
	}
}

func TestReminderScheduler_FiresOnce(t *testing.T) {
	notifier := newRecordingNotifier(nil)
	deliveries := &memoryLog{}
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{notifier}, Log: deliveries})
	stop := startScheduler(t, s)
	defer stop()

	treatment := time.Now().Add(30*time.Minute + 300*time.Millisecond)
	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", UserPhone: "+1 (555) 000-1111", TreatmentTime: treatment, Duration: 45,
	})
	require.NoError(t, err)

	sent := waitDelivery(t, notifier)
	assert.Equal(t, got.ID, sent.ReminderID)
	assert.Equal(t, "ana@example.com", sent.UserEmail)
	assert.Equal(t, "Ana", sent.UserName)
	assert.Equal(t, "+15550001111", sent.UserPhone)
	assert.Equal(t, 45, sent.Duration)
	assert.True(t, treatment.Equal(sent.TreatmentTime))

	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, s.ListForUser("ana@example.com"))
	assert.True(t, IsNotFound(s.Cancel(got.ID)))

	entries := deliveries.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "sent", entries[0].Status)
	assert.Equal(t, "email", entries[0].Channel)
	assert.Equal(t, got.ID, entries[0].ReminderID)

	// a one-shot never comes back
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, 1, notifier.count())
}

func TestReminderScheduler_FailedDeliveryIsRetired(t *testing.T) {
	notifier := newRecordingNotifier(errors.New("mail provider down"))
	deliveries := &memoryLog{}
	reporter := &recordingReporter{}
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{notifier}, Log: deliveries, Reporter: reporter})
	stop := startScheduler(t, s)
	defer stop()

	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(30*time.Minute + 200*time.Millisecond), Duration: 20,
	})
	require.NoError(t, err)

	waitDelivery(t, notifier)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.True(t, IsNotFound(s.Cancel(got.ID)))

	reported := reporter.reported()
	require.Len(t, reported, 1)
	var derr *DeliveryError
	require.True(t, errors.As(reported[0], &derr))
	assert.Equal(t, got.ID, derr.ReminderID)
	assert.Equal(t, "email", derr.Channel)

	entries := deliveries.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "mail provider down", entries[0].ErrorMessage)
}

func TestReminderScheduler_NotApplicableChannelIsSkipped(t *testing.T) {
	email := newRecordingNotifier(nil)
	sms := newRecordingNotifier(ErrNotApplicable)
	sms.channel = "sms"
	deliveries := &memoryLog{}
	reporter := &recordingReporter{}
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{email, sms}, Log: deliveries, Reporter: reporter})
	stop := startScheduler(t, s)
	defer stop()

	_, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(30*time.Minute + 200*time.Millisecond), Duration: 20,
	})
	require.NoError(t, err)

	waitDelivery(t, email)
	waitDelivery(t, sms)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)

	entries := deliveries.all()
	require.Len(t, entries, 1)
	assert.Equal(t, "email", entries[0].Channel)
	assert.Empty(t, reporter.reported())
}

func TestReminderScheduler_CancelledReminderNeverFires(t *testing.T) {
	notifier := newRecordingNotifier(nil)
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{notifier}})
	stop := startScheduler(t, s)
	defer stop()

	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(30*time.Minute + 300*time.Millisecond), Duration: 20,
	})
	require.NoError(t, err)
	require.NoError(t, s.Cancel(got.ID))

	time.Sleep(time.Second)
	assert.Equal(t, 0, notifier.count())
}

func TestReminderScheduler_OverdueReminderFiresImmediately(t *testing.T) {
	notifier := newRecordingNotifier(nil)
	// The scheduler's clock runs an hour behind the wall clock the cron uses,
	// so this reminder is already due by the time cron sees it.
	s := NewReminderScheduler(SchedulerOptions{
		Notifiers: []Notifier{notifier},
		Now:       func() time.Time { return time.Now().Add(-time.Hour) },
	})

	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(-20 * time.Minute), Duration: 20,
	})
	require.NoError(t, err)

	stop := startScheduler(t, s)
	defer stop()

	sent := waitDelivery(t, notifier)
	assert.Equal(t, got.ID, sent.ReminderID)
	assert.Eventually(t, func() bool { return s.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestReminderScheduler_StopDropsPending(t *testing.T) {
	notifier := newRecordingNotifier(nil)
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{notifier}})
	stop := startScheduler(t, s)

	_, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(2 * time.Hour), Duration: 20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Pending())

	stop()
	assert.Equal(t, 0, s.Pending())
	assert.Empty(t, s.ListForUser("ana@example.com"))
	assert.Equal(t, 0, notifier.count())
}

func TestReminderScheduler_ScheduleAfterStop(t *testing.T) {
	notifier := newRecordingNotifier(nil)
	s := NewReminderScheduler(SchedulerOptions{Notifiers: []Notifier{notifier}})
	stop := startScheduler(t, s)
	stop()

	got, err := s.Schedule(ScheduleRequest{
		UserEmail: "ana@example.com", UserName: "Ana", TreatmentTime: time.Now().Add(2 * time.Hour), Duration: 20,
	})
	assert.Nil(t, got)
	assert.True(t, errors.Is(err, ErrSchedulerStopped))
	assert.Equal(t, 0, s.Pending())
	assert.Empty(t, s.ListForUser("ana@example.com"))
}
