// Package daemon serves the bank over HTTP for widgets and summaries and
// runs the daily reminder.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stephencockerill/oink/internal/bank"
	"github.com/stephencockerill/oink/internal/reminder"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	EventsBuffer int

	RemindersEnabled bool
	ReminderHour     int
	ReminderMinute   int
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventReminder = "reminder"
)

// Event is emitted whenever the bank publishes or a reminder fires.
type Event struct {
	ID        int64              `json:"id"`
	Type      string             `json:"type"`
	Timestamp time.Time          `json:"timestamp"`
	Snapshot  *bank.Snapshot     `json:"snapshot,omitempty"`
	Reminder  *reminder.Reminder `json:"reminder,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt        time.Time `json:"started_at"`
	Addr             string    `json:"addr"`
	RemindersEnabled bool      `json:"reminders_enabled"`
	ReminderAt       string    `json:"reminder_at,omitempty"`
	EventCount       int       `json:"event_count"`
	SubscriberCount  int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg     Config
	bank    *bank.Service
	metrics *Metrics
	log     zerolog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	scheduler   *reminder.Scheduler
	reminderJob *reminder.DailyJob
}

// New returns a new daemon service with the provided config.
func New(cfg Config, b *bank.Service, log zerolog.Logger) *Service {
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}

	s := &Service{
		cfg:       cfg,
		bank:      b,
		metrics:   NewMetrics(),
		log:       log.With().Str("component", "daemon").Logger(),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
	s.scheduler = reminder.NewScheduler(s.log)
	s.reminderJob = reminder.NewDailyJob(b, s.notifier(), b.Now, s.log)
	return s
}

// Run starts HTTP endpoints, the bank subscription and the reminder
// schedule until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	subID, snaps := s.bank.Subscribe()
	defer s.bank.Unsubscribe(subID)
	go s.forward(snaps)

	if s.cfg.RemindersEnabled {
		if err := s.scheduleReminder(); err != nil {
			return err
		}
		s.scheduler.Start()
		defer s.scheduler.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info().Str("addr", s.cfg.Addr).Msg("daemon listening")

	// Seed initial snapshot so status is useful immediately.
	if _, err := s.bank.Refresh(ctx); err != nil {
		s.log.Error().Err(err).Msg("initial refresh failed")
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("daemon http server: %w", err)
	}
}

func (s *Service) scheduleReminder() error {
	spec, err := reminder.DailyAt(s.cfg.ReminderHour, s.cfg.ReminderMinute)
	if err != nil {
		return err
	}
	return s.scheduler.AddJob(spec, s.reminderJob)
}

// notifier logs the reminder and publishes it to stream subscribers.
func (s *Service) notifier() reminder.Notifier {
	logged := reminder.LogNotifier{Log: s.log}
	return reminder.NotifierFunc(func(ctx context.Context, r reminder.Reminder) error {
		s.metrics.Reminders.Inc()
		s.publishEvent(Event{Type: EventReminder, Timestamp: s.bank.Now(), Reminder: &r})
		return logged.Notify(ctx, r)
	})
}

// forward turns bank snapshots into events until the channel closes.
func (s *Service) forward(snaps <-chan bank.Snapshot) {
	for snap := range snaps {
		s.onSnapshot(snap)
	}
}

func (s *Service) onSnapshot(snap bank.Snapshot) {
	s.metrics.Observe(snap)
	s.publishEvent(Event{Type: EventSnapshot, Timestamp: snap.At, Snapshot: &snap})
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		StartedAt:        s.startedAt,
		Addr:             s.cfg.Addr,
		RemindersEnabled: s.cfg.RemindersEnabled,
		EventCount:       len(s.events),
		SubscriberCount:  len(s.subs),
	}
	if s.cfg.RemindersEnabled {
		st.ReminderAt = fmt.Sprintf("%02d:%02d", s.cfg.ReminderHour, s.cfg.ReminderMinute)
	}
	return st
}

func (s *Service) eventsCopy() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return events
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
