// Package schedule runs reminder scans on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/reminder"
)

// DefaultSchedule runs every day at 08:00:00.
const DefaultSchedule = "0 0 8 * * *"

// Notifier runs one scan-and-send pass.
type Notifier interface {
	Notify(ctx context.Context, now time.Time) (reminder.Result, error)
}

var parser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Validate checks a cron expression with a seconds field.
func Validate(spec string) error {
	if _, err := parser.Parse(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation evaluates the schedule in loc instead of the local zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) { s.loc = loc }
}

// WithRunImmediately runs one pass as soon as the scheduler starts.
func WithRunImmediately(run bool) Option {
	return func(s *Scheduler) { s.runImmediately = run }
}

// WithClock replaces time.Now for the scan time.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// Scheduler triggers Notifier.Notify on a cron schedule.
type Scheduler struct {
	mu             sync.Mutex
	cron           *cron.Cron
	job            Notifier
	schedule       string
	jobID          cron.EntryID
	ctx            context.Context
	logger         *log.Logger
	loc            *time.Location
	runImmediately bool
	now            func() time.Time
	started        bool
}

// New creates a scheduler. The schedule uses six fields (with seconds) or a
// descriptor such as @daily.
func New(job Notifier, schedule string, opts ...Option) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if err := Validate(schedule); err != nil {
		return nil, err
	}
	s := &Scheduler{
		job:      job,
		schedule: schedule,
		logger:   logging.Discard(),
		loc:      time.Local,
		now:      time.Now,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	return s, nil
}

// Start registers the job and starts the cron loop. ctx is passed to
// every scan and cancels in-flight sends.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already started")
	}
	s.ctx = ctx
	id, err := s.cron.AddFunc(s.schedule, s.run)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("error scheduling reminders: %w", err)
	}
	s.jobID = id
	s.started = true
	s.cron.Start()
	s.mu.Unlock()

	s.logger.Info("scheduler started", "schedule", s.schedule, "next", s.Next())

	if s.runImmediately {
		s.run()
	}
	return nil
}

// Stop stops the cron loop and drops the job entry so a later Start
// registers it exactly once. The returned context is done once a running
// scan has finished.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.cron.Remove(s.jobID)
		s.jobID = 0
	}
	s.started = false
	ctx := s.cron.Stop()
	s.logger.Info("scheduler stopped")
	return ctx
}

// UpdateSchedule swaps the cron expression. The old schedule stays in
// place when the new one does not parse.
func (s *Scheduler) UpdateSchedule(schedule string) error {
	if err := Validate(schedule); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		id, err := s.cron.AddFunc(schedule, s.run)
		if err != nil {
			return fmt.Errorf("error updating schedule: %w", err)
		}
		s.cron.Remove(s.jobID)
		s.jobID = id
	}
	s.schedule = schedule
	s.logger.Info("schedule updated", "schedule", schedule)
	return nil
}

// Schedule returns the current cron expression.
func (s *Scheduler) Schedule() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.schedule
}

// Next returns the next planned run, or the zero time when not started.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return time.Time{}
	}
	return s.cron.Entry(s.jobID).Next
}

// RunNow runs one pass synchronously.
func (s *Scheduler) RunNow(ctx context.Context) (reminder.Result, error) {
	s.logger.Info("running reminder scan")
	result, err := s.job.Notify(ctx, s.now())
	if err != nil {
		s.logger.Error("reminder scan finished with errors", "err", err)
	}
	return result, err
}

func (s *Scheduler) run() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	_, _ = s.RunNow(ctx)
}
