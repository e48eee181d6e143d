package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stephencockerill/oink/internal/model"
)

// Default reminder time.
const (
	DefaultHour   = 20
	DefaultMinute = 0
)

// Reminder is one nudge to deliver.
type Reminder struct {
	Date    model.Date `json:"date"`
	Title   string     `json:"title"`
	Body    string     `json:"body"`
	Urgency Urgency    `json:"urgency"`
}

// Notifier delivers reminders.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, r Reminder) error

// Notify calls f.
func (f NotifierFunc) Notify(ctx context.Context, r Reminder) error { return f(ctx, r) }

// LogNotifier writes reminders to the log.
type LogNotifier struct {
	Log zerolog.Logger
}

// Notify logs r at warn level so it shows with default settings.
func (n LogNotifier) Notify(_ context.Context, r Reminder) error {
	n.Log.Warn().Str("date", r.Date.String()).Str("urgency", string(r.Urgency)).Msg(r.Title + " " + r.Body)
	return nil
}

// Checker answers whether today still needs a workout.
type Checker interface {
	NeedsReminder(ctx context.Context) (bool, error)
}

// DailyJob checks the ledger and notifies when today is unlogged or a rest
// day.
type DailyJob struct {
	checker  Checker
	notifier Notifier
	clock    model.Clock
	timeout  time.Duration
	log      zerolog.Logger
}

// NewDailyJob returns the daily reminder job.
func NewDailyJob(checker Checker, notifier Notifier, clock model.Clock, log zerolog.Logger) *DailyJob {
	return &DailyJob{
		checker:  checker,
		notifier: notifier,
		clock:    clock,
		timeout:  10 * time.Second,
		log:      log.With().Str("job", "daily_reminder").Logger(),
	}
}

// Name returns the job name
func (j *DailyJob) Name() string {
	return "daily_reminder"
}

// Run checks today and notifies if needed.
func (j *DailyJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()
	_, err := j.Check(ctx)
	return err
}

// Check does the work of Run and reports whether a reminder was sent.
func (j *DailyJob) Check(ctx context.Context) (bool, error) {
	need, err := j.checker.NeedsReminder(ctx)
	if err != nil {
		return false, fmt.Errorf("checking today: %w", err)
	}
	if !need {
		j.log.Debug().Msg("already exercised today")
		return false, nil
	}

	now := j.clock.Now()
	r := Reminder{
		Date:    model.DateOf(now),
		Title:   "Time to feed the pig! 🐷",
		Body:    "Did you exercise today? Add to your piggy bank!",
		Urgency: UrgencyAt(now, true),
	}
	if err := j.notifier.Notify(ctx, r); err != nil {
		return false, fmt.Errorf("sending reminder: %w", err)
	}
	return true, nil
}

// Urgency grades how pressing today's workout is.
type Urgency string

// Urgency levels, escalating through the day.
const (
	UrgencyDone     Urgency = "done"
	UrgencyCalm     Urgency = "calm"
	UrgencyNudge    Urgency = "nudge"
	UrgencyWarn     Urgency = "warn"
	UrgencyCritical Urgency = "critical"
)

// UrgencyAt grades the time of day. A day that needs nothing is done.
func UrgencyAt(now time.Time, needsWorkout bool) Urgency {
	if !needsWorkout {
		return UrgencyDone
	}
	switch h := now.Hour(); {
	case h < 12:
		return UrgencyCalm
	case h < 17:
		return UrgencyNudge
	case h < 21:
		return UrgencyWarn
	default:
		return UrgencyCritical
	}
}
