package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"nightlock/internal/core"
	"nightlock/internal/metrics"
)

// TriggerTimeout bounds a single scheduled permission change
const TriggerTimeout = 30 * time.Second

// Trigger describes one registered daily entry
type Trigger struct {
	ID     cron.EntryID
	Action string
	Spec   string
	Next   time.Time
}

// Scheduler owns the single cron instance and keeps exactly two daily
// entries registered: one lock and one unlock
type Scheduler struct {
	cron     *cron.Cron
	actuator core.PermissionSetter
	location *time.Location
	metrics  *metrics.Metrics
	logger   *slog.Logger
	timeout  time.Duration

	mu         sync.Mutex
	registered map[cron.EntryID]Trigger
}

// NewScheduler creates a scheduler firing in location. Nothing is registered
// until Reprogram is called.
func NewScheduler(actuator core.PermissionSetter, location *time.Location, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if location == nil {
		location = time.UTC
	}
	logger = logger.With("component", "scheduler")
	cronLog := cronLogger{logger: logger}

	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithLogger(cronLog),
			cron.WithChain(cron.Recover(cronLog)),
		),
		actuator:   actuator,
		location:   location,
		metrics:    m,
		logger:     logger,
		timeout:    TriggerTimeout,
		registered: make(map[cron.EntryID]Trigger),
	}
}

// Start begins firing triggers in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started", "timezone", s.location.String())
}

// Stop stops the scheduler. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	ctx := s.cron.Stop()
	s.logger.Info("Scheduler stopped")
	return ctx
}

// Reprogram removes the previously registered triggers and registers a lock
// and an unlock trigger for config. Calling it repeatedly never accumulates
// entries.
func (s *Scheduler) Reprogram(config core.ScheduleConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id := range s.registered {
		s.cron.Remove(id)
		delete(s.registered, id)
	}

	if err := s.add(true, config.LockHour, config.LockMinute); err != nil {
		return err
	}
	if err := s.add(false, config.UnlockHour, config.UnlockMinute); err != nil {
		return err
	}

	s.logger.Info("Triggers reprogrammed",
		"lock_at", config.LockAt(),
		"unlock_at", config.UnlockAt(),
	)
	return nil
}

// add registers one daily entry; the caller holds s.mu
func (s *Scheduler) add(locked bool, hour, minute int) error {
	spec := fmt.Sprintf("%d %d * * *", minute, hour)
	id, err := s.cron.AddFunc(spec, s.job(locked))
	if err != nil {
		return fmt.Errorf("failed to register %s trigger %q: %w", metrics.Action(locked), spec, err)
	}
	s.registered[id] = Trigger{ID: id, Action: metrics.Action(locked), Spec: spec}
	return nil
}

// job builds the function cron runs. The lock flag is fixed at registration.
func (s *Scheduler) job(locked bool) func() {
	action := metrics.Action(locked)
	return func() {
		s.metrics.ObserveTrigger(locked)

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := s.actuator.SetLocked(ctx, locked); err != nil {
			s.logger.Error("Scheduled permission change failed",
				"action", action,
				"duration", time.Since(start),
				"error", err,
			)
			return
		}

		s.logger.Info("Scheduled permission change applied",
			"action", action,
			"duration", time.Since(start),
		)
	}
}

// Triggers lists the registered entries with their next activation after now,
// lock first
func (s *Scheduler) Triggers(now time.Time) []Trigger {
	s.mu.Lock()
	defer s.mu.Unlock()

	triggers := make([]Trigger, 0, len(s.registered))
	for _, entry := range s.cron.Entries() {
		t, ok := s.registered[entry.ID]
		if !ok {
			continue
		}
		t.Next = entry.Schedule.Next(now.In(s.location))
		triggers = append(triggers, t)
	}

	sort.Slice(triggers, func(i, j int) bool {
		return triggers[i].Action == "lock" && triggers[j].Action != "lock"
	})
	return triggers
}

// cronLogger adapts slog to cron.Logger. Cron's info output is per-run
// chatter, so it goes to debug.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
