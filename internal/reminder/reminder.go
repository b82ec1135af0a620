// Package reminder scans every employee's tasks and sends a message for
// each pending task due within the next day.
package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/notify"
	"github.com/nibzard/taskremind/internal/parallel"
	"github.com/nibzard/taskremind/internal/store"
	"github.com/nibzard/taskremind/internal/templates"
	"github.com/nibzard/taskremind/internal/todo"
)

// Directory lists the employees to scan.
type Directory interface {
	List() []store.Employee
}

// TaskSource loads one employee's tasks in due order.
type TaskSource interface {
	Tasks(employee string) ([]todo.Task, error)
}

// Ledger remembers delivered reminders.
type Ledger interface {
	WasNotified(employee, key string) (bool, error)
	Record(employee, key string, at time.Time) error
}

// Reminder is one message destined for one employee.
type Reminder struct {
	Employee string
	Address  string
	Index    int
	Task     todo.Task
	Message  string
}

// ScanError is a task or task store that could not be evaluated.
// Index is 0 when the whole store failed to load.
type ScanError struct {
	Employee string
	Index    int
	Err      error
}

func (e *ScanError) Error() string {
	if e.Index == 0 {
		return fmt.Sprintf("employee %s: %v", e.Employee, e.Err)
	}
	return fmt.Sprintf("employee %s: task %d: %v", e.Employee, e.Index, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Scan is the outcome of one evaluation pass.
type Scan struct {
	At        time.Time
	Reminders []Reminder
	Errors    []error
}

// Err joins the scan errors, or returns nil.
func (s Scan) Err() error {
	return errors.Join(s.Errors...)
}

// Failure is a reminder the notifier could not deliver.
type Failure struct {
	Reminder Reminder
	Err      error
}

// Result is the outcome of dispatching a scan.
type Result struct {
	Scan    Scan
	Sent    []Reminder
	Skipped []Reminder
	Failed  []Failure
}

// Err joins the delivery failures, or returns nil.
func (r Result) Err() error {
	errs := make([]error, 0, len(r.Failed))
	for _, f := range r.Failed {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLedger enables deduplication through l.
func WithLedger(l Ledger) Option {
	return func(c *Coordinator) { c.ledger = l }
}

// WithLanguage selects the message template.
func WithLanguage(lang Language) Option {
	return func(c *Coordinator) { c.lang = lang }
}

// WithLogger sets the console logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTemplates renders messages through r instead of the built-in text.
func WithTemplates(r *templates.Renderer) Option {
	return func(c *Coordinator) { c.templates = r }
}

// WithConcurrency sends up to n reminders at once. Values below two send
// one at a time in scan order.
func WithConcurrency(n int) Option {
	return func(c *Coordinator) { c.concurrency = n }
}

// WithHistory writes one JSONL history file per Notify call into dir.
func WithHistory(dir string) Option {
	return func(c *Coordinator) { c.historyDir = dir }
}

// Coordinator walks employees and tasks and hands due reminders to a notifier.
type Coordinator struct {
	directory   Directory
	tasks       TaskSource
	notifier    notify.Notifier
	ledger      Ledger
	lang        Language
	logger      *log.Logger
	historyDir  string
	concurrency int
	templates   *templates.Renderer
}

// New creates a coordinator.
func New(directory Directory, tasks TaskSource, notifier notify.Notifier, opts ...Option) *Coordinator {
	c := &Coordinator{
		directory: directory,
		tasks:     tasks,
		notifier:  notifier,
		lang:      English,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run evaluates every employee's tasks at now. Tasks that cannot be
// evaluated are collected in Scan.Errors and do not stop the scan; the
// returned error joins them.
func (c *Coordinator) Run(now time.Time) (Scan, error) {
	scan := Scan{At: now}
	for _, emp := range c.directory.List() {
		tasks, err := c.tasks.Tasks(emp.ID)
		if err != nil {
			scan.Errors = append(scan.Errors, &ScanError{Employee: emp.ID, Err: err})
			c.logger.Error("load tasks", "employee", emp.ID, "err", err)
			continue
		}
		for i, task := range tasks {
			soon, err := due.IsDueSoon(task, now)
			if err != nil {
				scan.Errors = append(scan.Errors, &ScanError{Employee: emp.ID, Index: i + 1, Err: err})
				c.logger.Error("evaluate task", "employee", emp.ID, "task", i+1, "err", err)
				continue
			}
			if !soon {
				continue
			}
			message, err := c.message(emp, task)
			if err != nil {
				scan.Errors = append(scan.Errors, &ScanError{Employee: emp.ID, Index: i + 1, Err: err})
				c.logger.Error("render reminder", "employee", emp.ID, "task", i+1, "err", err)
				continue
			}
			scan.Reminders = append(scan.Reminders, Reminder{
				Employee: emp.ID,
				Address:  emp.Address,
				Index:    i + 1,
				Task:     task,
				Message:  message,
			})
		}
	}
	c.logger.Debug("scan finished", "reminders", len(scan.Reminders), "errors", len(scan.Errors))
	return scan, scan.Err()
}

func (c *Coordinator) message(emp store.Employee, task todo.Task) (string, error) {
	if c.templates == nil {
		return FormatMessage(c.lang, task), nil
	}
	priority := task.Priority.String()
	if c.lang == Spanish {
		priority = task.Priority.Label()
	}
	return c.templates.Reminder(string(c.lang), templates.Data{
		Employee:    emp.ID,
		Address:     emp.Address,
		Description: task.Description,
		Priority:    priority,
		DueDate:     task.DueDate,
	})
}

// Dispatch sends every reminder in scan. A failed delivery is recorded and
// the remaining reminders are still sent.
func (c *Coordinator) Dispatch(ctx context.Context, scan Scan) Result {
	return c.dispatch(ctx, scan, nil)
}

// Notify runs a scan at now and dispatches it. The returned error joins
// scan errors and delivery failures.
func (c *Coordinator) Notify(ctx context.Context, now time.Time) (Result, error) {
	history := c.openHistory()
	defer func() {
		if err := history.Close(); err != nil {
			c.logger.Warn("close history", "err", err)
		}
	}()
	c.record(history, logging.ScanEvent{Type: logging.EventScan, Time: now})

	scan, scanErr := c.Run(now)
	for _, err := range scan.Errors {
		ev := logging.ScanEvent{Type: logging.EventError, Time: now, Error: err.Error()}
		var se *ScanError
		if errors.As(err, &se) {
			ev.Employee = se.Employee
			ev.Index = se.Index
		}
		c.record(history, ev)
	}

	result := c.dispatch(ctx, scan, history)
	c.record(history, logging.ScanEvent{
		Type:    logging.EventSummary,
		Time:    now,
		Sent:    len(result.Sent),
		Skipped: len(result.Skipped),
		Failed:  len(result.Failed),
	})
	c.logger.Info("reminders dispatched",
		"sent", len(result.Sent),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"errors", len(scan.Errors),
	)
	return result, errors.Join(scanErr, result.Err())
}

func (c *Coordinator) dispatch(ctx context.Context, scan Scan, history *logging.ScanLog) Result {
	result := Result{Scan: scan}

	var pending []Reminder
	for _, r := range scan.Reminders {
		if c.alreadyNotified(r) {
			result.Skipped = append(result.Skipped, r)
			c.record(history, reminderEvent(scan.At, r, logging.EventSkipped))
			c.logger.Debug("already notified", "employee", r.Employee, "task", r.Task.Description)
			continue
		}
		pending = append(pending, r)
	}

	errs := c.send(ctx, pending)
	for i, r := range pending {
		event := reminderEvent(scan.At, r, logging.EventReminder)
		if err := errs[i]; err != nil {
			var ne *notify.NotificationError
			if !errors.As(err, &ne) {
				err = &notify.NotificationError{Address: r.Address, Err: err}
			}
			result.Failed = append(result.Failed, Failure{Reminder: r, Err: err})
			event.Type = logging.EventFailed
			event.Error = err.Error()
			c.record(history, event)
			c.logger.Error("send reminder", "employee", r.Employee, "address", r.Address, "err", err)
			continue
		}

		result.Sent = append(result.Sent, r)
		c.record(history, event)
		c.logger.Info("reminder sent", "employee", r.Employee, "address", r.Address, "task", r.Task.Description)

		if c.ledger != nil {
			if err := c.ledger.Record(r.Employee, r.Task.Key(), scan.At); err != nil {
				c.logger.Warn("record reminder", "employee", r.Employee, "err", err)
			}
		}
	}
	return result
}

// send delivers reminders and returns one error slot per reminder. With a
// concurrency above one the sends run on a worker pool.
func (c *Coordinator) send(ctx context.Context, reminders []Reminder) []error {
	errs := make([]error, len(reminders))
	if c.concurrency <= 1 {
		for i, r := range reminders {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				continue
			}
			errs[i] = c.notifier.Send(ctx, r.Address, r.Message)
		}
		return errs
	}

	pool := parallel.NewWorkerPool(ctx, c.concurrency, false)
	for _, r := range reminders {
		pool.Submit(r.Employee, func(ctx context.Context) error {
			return c.notifier.Send(ctx, r.Address, r.Message)
		})
	}
	results, _ := pool.Wait()
	for i, res := range results {
		errs[i] = res.Error
		if res.Skipped {
			errs[i] = ctx.Err()
			if errs[i] == nil {
				errs[i] = context.Canceled
			}
		}
	}
	return errs
}

func reminderEvent(at time.Time, r Reminder, typ string) logging.ScanEvent {
	return logging.ScanEvent{
		Type:     typ,
		Time:     at,
		Employee: r.Employee,
		Address:  r.Address,
		Index:    r.Index,
		Task:     r.Task.Description,
		DueDate:  r.Task.DueDate,
		Message:  r.Message,
	}
}

func (c *Coordinator) alreadyNotified(r Reminder) bool {
	if c.ledger == nil {
		return false
	}
	ok, err := c.ledger.WasNotified(r.Employee, r.Task.Key())
	if err != nil {
		c.logger.Warn("ledger lookup failed, sending anyway", "employee", r.Employee, "err", err)
		return false
	}
	return ok
}

func (c *Coordinator) openHistory() *logging.ScanLog {
	if c.historyDir == "" {
		return nil
	}
	l, err := logging.NewScanLog(c.historyDir)
	if err != nil {
		c.logger.Warn("open history", "err", err)
		return nil
	}
	return l
}

func (c *Coordinator) record(history *logging.ScanLog, ev logging.ScanEvent) {
	if err := history.Write(ev); err != nil {
		c.logger.Warn("write history", "err", err)
	}
}
