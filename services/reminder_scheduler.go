// services/reminder_scheduler.go
package services

import (
	"context"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"nebula-backend/models"
	"nebula-backend/utils"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

const (
	DefaultReminderLead = 30 * time.Minute
	deliveryTimeout     = 30 * time.Second
	shutdownTimeout     = 10 * time.Second
)

// ScheduleRequest carries everything needed to arm one reminder.
type ScheduleRequest struct {
	UserEmail     string
	UserName      string
	UserPhone     string
	TreatmentTime time.Time
	Duration      int // in minutes
}

type ScheduledReminder struct {
	ID           uuid.UUID `json:"reminderId"`
	ReminderTime time.Time `json:"reminderTime"`
}

// ReminderSummary is the public projection of a pending reminder.
type ReminderSummary struct {
	ID            uuid.UUID `json:"id"`
	TreatmentTime time.Time `json:"treatmentTime"`
	ReminderTime  time.Time `json:"reminderTime"`
	Duration      int       `json:"duration"`
}

// DeliveryLog stores the outcome of every delivery attempt.
type DeliveryLog interface {
	Record(ctx context.Context, entry *models.ReminderLog) error
}

type SchedulerOptions struct {
	Lead      time.Duration
	Notifiers []Notifier
	Log       DeliveryLog
	Reporter  ErrorReporter
	Now       func() time.Time
}

type reminderRecord struct {
	id            uuid.UUID
	userEmail     string
	userName      string
	userPhone     string
	treatmentTime time.Time
	reminderTime  time.Time
	duration      int

	entryID cron.EntryID
	// set once the task has started delivery; the record is no longer cancellable
	claimed bool
}

type firedEvent struct {
	id  uuid.UUID
	err error
}

// ReminderScheduler arms one-shot reminder tasks and tracks them until they
// fire or are cancelled. Pending reminders live only in memory: a restart
// drops every one of them.
type ReminderScheduler struct {
	cron      *cron.Cron
	lead      time.Duration
	notifiers []Notifier
	log       DeliveryLog
	reporter  ErrorReporter
	now       func() time.Time

	mu      sync.Mutex
	records map[uuid.UUID]*reminderRecord

	fired chan firedEvent
	done  chan struct{}
	once  sync.Once
}

func NewReminderScheduler(opts SchedulerOptions) *ReminderScheduler {
	if opts.Lead <= 0 {
		opts.Lead = DefaultReminderLead
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Reporter == nil {
		opts.Reporter = LogReporter{}
	}

	logger := cron.VerbosePrintfLogger(log.New(os.Stdout, "[SCHEDULER] cron: ", log.LstdFlags))
	return &ReminderScheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger)),
		),
		lead:      opts.Lead,
		notifiers: opts.Notifiers,
		log:       opts.Log,
		reporter:  opts.Reporter,
		now:       opts.Now,
		records:   make(map[uuid.UUID]*reminderRecord),
		fired:     make(chan firedEvent, 16),
		done:      make(chan struct{}),
	}
}

// Start runs the cron facility and the fired-event loop until ctx is cancelled.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.cron.Start()
	log.Printf("[SCHEDULER] Reminder scheduler started (lead %v)", s.lead)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case ev := <-s.fired:
			s.retire(ev)
		}
	}
}

func (s *ReminderScheduler) shutdown() {
	// Closed under s.mu so no Schedule call can slip a record in after it.
	s.mu.Lock()
	s.once.Do(func() { close(s.done) })
	s.mu.Unlock()

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(shutdownTimeout):
		log.Println("[SCHEDULER] Timed out waiting for running reminder tasks")
	}

	s.mu.Lock()
	dropped := len(s.records)
	s.records = make(map[uuid.UUID]*reminderRecord)
	s.mu.Unlock()

	if dropped > 0 {
		log.Printf("[SCHEDULER] Stopped with %d pending reminders; they will not be sent", dropped)
	} else {
		log.Println("[SCHEDULER] Reminder scheduler stopped")
	}
}

// Schedule validates the request and arms a reminder at TreatmentTime minus the lead.
func (s *ReminderScheduler) Schedule(req ScheduleRequest) (*ScheduledReminder, error) {
	req.UserEmail = strings.TrimSpace(req.UserEmail)
	req.UserName = strings.TrimSpace(req.UserName)

	if err := validateScheduleRequest(req); err != nil {
		return nil, err
	}
	phone, ok := utils.NormalizePhone(req.UserPhone)
	if !ok {
		return nil, &ValidationError{Field: "userPhone", Message: "Invalid phone number format"}
	}

	now := s.now()
	if !req.TreatmentTime.After(now) {
		return nil, &PastTimeError{Message: "Treatment time must be in the future"}
	}

	reminderTime := req.TreatmentTime.Add(-s.lead)
	if !reminderTime.After(now) {
		log.Println("[SCHEDULER] Reminder time is in the past, not scheduling")
		return nil, &PastTimeError{Message: "Reminder time is in the past"}
	}

	rec := &reminderRecord{
		id:            uuid.New(),
		userEmail:     req.UserEmail,
		userName:      req.UserName,
		userPhone:     phone,
		treatmentTime: req.TreatmentTime,
		reminderTime:  reminderTime,
		duration:      req.Duration,
	}

	// The task cannot claim the record before it is in the map: claim takes s.mu.
	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		return nil, ErrSchedulerStopped
	default:
	}
	rec.entryID = s.cron.Schedule(at(reminderTime), s.task(rec.id))
	s.records[rec.id] = rec
	s.mu.Unlock()

	log.Printf("[SCHEDULER] Scheduled reminder %s for %s at %s",
		rec.id, rec.userEmail, reminderTime.Format(time.RFC3339))

	return &ScheduledReminder{ID: rec.id, ReminderTime: reminderTime}, nil
}

func validateScheduleRequest(req ScheduleRequest) error {
	var missing []string
	if req.TreatmentTime.IsZero() {
		missing = append(missing, "treatmentDateTime")
	}
	if req.Duration == 0 {
		missing = append(missing, "duration")
	}
	if req.UserEmail == "" {
		missing = append(missing, "userEmail")
	}
	if req.UserName == "" {
		missing = append(missing, "userName")
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   missing[0],
			Message: "Missing required fields: " + strings.Join(missing, ", "),
		}
	}
	if req.Duration < 0 {
		return &ValidationError{Field: "duration", Message: "Duration must be a positive number of minutes"}
	}
	return nil
}

// ListForUser returns the pending reminders for email ordered by reminder time.
func (s *ReminderScheduler) ListForUser(email string) []ReminderSummary {
	email = strings.TrimSpace(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ReminderSummary, 0)
	for _, rec := range s.records {
		if rec.claimed || rec.userEmail != email {
			continue
		}
		out = append(out, ReminderSummary{
			ID:            rec.id,
			TreatmentTime: rec.treatmentTime,
			ReminderTime:  rec.reminderTime,
			Duration:      rec.duration,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ReminderTime.Before(out[j].ReminderTime)
	})
	return out
}

// Cancel retires a pending reminder. A reminder whose task already started
// delivery is reported as not found.
func (s *ReminderScheduler) Cancel(id uuid.UUID) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok || rec.claimed {
		s.mu.Unlock()
		return &NotFoundError{ID: id}
	}
	delete(s.records, id)
	s.mu.Unlock()

	s.cron.Remove(rec.entryID)
	log.Printf("[SCHEDULER] Cancelled reminder %s", id)
	return nil
}

// Pending returns the number of reminders waiting to fire.
func (s *ReminderScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if !rec.claimed {
			n++
		}
	}
	return n
}

func (s *ReminderScheduler) task(id uuid.UUID) cron.FuncJob {
	return func() {
		rec, ok := s.claim(id)
		if !ok {
			return
		}
		err := s.deliver(rec)
		select {
		case s.fired <- firedEvent{id: id, err: err}:
		case <-s.done:
		}
	}
}

func (s *ReminderScheduler) claim(id uuid.UUID) (reminderRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok || rec.claimed {
		return reminderRecord{}, false
	}
	rec.claimed = true
	return *rec, true
}

// retire runs on the scheduler loop after a task finished delivery.
func (s *ReminderScheduler) retire(ev firedEvent) {
	s.mu.Lock()
	rec, ok := s.records[ev.id]
	delete(s.records, ev.id)
	s.mu.Unlock()

	if ok {
		s.cron.Remove(rec.entryID)
	}
	if ev.err != nil {
		log.Printf("[SCHEDULER] Reminder %s retired after failed delivery", ev.id)
		return
	}
	log.Printf("[SCHEDULER] Reminder %s sent and retired", ev.id)
}

func (s *ReminderScheduler) deliver(rec reminderRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	msg := TreatmentReminder{
		ReminderID:    rec.id,
		UserEmail:     rec.userEmail,
		UserName:      rec.userName,
		UserPhone:     rec.userPhone,
		TreatmentTime: rec.treatmentTime,
		Duration:      rec.duration,
	}

	log.Printf("[SCHEDULER] Sending treatment reminder %s to %s", rec.id, rec.userEmail)

	var firstErr error
	for _, n := range s.notifiers {
		err := n.Notify(ctx, msg)
		if errors.Is(err, ErrNotApplicable) {
			continue
		}

		entry := &models.ReminderLog{
			ReminderID:    rec.id,
			UserEmail:     rec.userEmail,
			TreatmentTime: rec.treatmentTime,
			Duration:      rec.duration,
			Status:        "sent",
			Channel:       n.Channel(),
			SentAt:        s.now(),
		}
		if err != nil {
			derr := &DeliveryError{ReminderID: rec.id, Channel: n.Channel(), Err: err}
			log.Printf("[SCHEDULER] %v", derr)
			s.reporter.Report(derr, map[string]interface{}{
				"reminder_id": rec.id.String(),
				"channel":     n.Channel(),
			})
			entry.Status = "failed"
			entry.ErrorMessage = err.Error()
			if firstErr == nil {
				firstErr = derr
			}
		}

		if s.log != nil {
			if err := s.log.Record(ctx, entry); err != nil {
				log.Printf("[SCHEDULER] Failed to log delivery of reminder %s: %v", rec.id, err)
			}
		}
	}
	return firstErr
}
