// Package app is the single entry point every front end uses to manage
// employees and tasks and to trigger reminder scans.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/notify"
	"github.com/nibzard/taskremind/internal/reminder"
	"github.com/nibzard/taskremind/internal/store"
	"github.com/nibzard/taskremind/internal/todo"
)

// ErrUnknownEmployee is returned for identifiers missing from the directory.
var ErrUnknownEmployee = errors.New("unknown employee")

// EmployeeTasks is one employee with their task list. Err is set when the
// task store could not be loaded.
type EmployeeTasks struct {
	Employee store.Employee
	Tasks    []todo.Task
	Err      error
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithReminderOptions passes options to every reminder coordinator.
func WithReminderOptions(opts ...reminder.Option) Option {
	return func(a *App) { a.reminderOpts = append(a.reminderOpts, opts...) }
}

// App serializes load-mutate-save cycles on the stores.
type App struct {
	mu            sync.Mutex
	employeesFile string
	tasks         store.TaskDir
	notifier      notify.Notifier
	reminderOpts  []reminder.Option
	logger        *log.Logger
}

// New creates an App over the given directory file and task directory.
func New(employeesFile, tasksDir string, notifier notify.Notifier, opts ...Option) *App {
	a := &App{
		employeesFile: employeesFile,
		tasks:         store.TaskDir{Dir: tasksDir},
		notifier:      notifier,
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.notifier == nil {
		a.notifier = notify.NewLogNotifier(a.logger)
	}
	return a
}

// AddEmployee registers or replaces an employee.
func (a *App) AddEmployee(id, address string) (store.Employee, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return store.Employee{}, err
	}
	emp, err := dir.Add(id, address)
	if err != nil {
		return store.Employee{}, err
	}
	if err := dir.Save(); err != nil {
		return store.Employee{}, err
	}
	// Create the task file up front so the employee shows up on disk.
	if _, err := a.tasks.Open(emp.ID); err != nil {
		return store.Employee{}, err
	}
	a.logger.Info("employee saved", "employee", emp.ID, "address", emp.Address)
	return emp, nil
}

// RemoveEmployee deletes an employee from the directory. Their task file is kept.
func (a *App) RemoveEmployee(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return err
	}
	if !dir.Remove(id) {
		return fmt.Errorf("%w: %s", ErrUnknownEmployee, id)
	}
	if err := dir.Save(); err != nil {
		return err
	}
	a.logger.Info("employee removed", "employee", id)
	return nil
}

// Employees lists the directory sorted by identifier.
func (a *App) Employees() ([]store.Employee, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return nil, err
	}
	return dir.List(), nil
}

// HasEmployee reports whether id is in the directory.
func (a *App) HasEmployee(id string) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, ok, err := a.lookup(id)
	return ok, err
}

// AddTask validates and stores a new pending task for employee.
func (a *App) AddTask(employee, description, priority, dueDate string) (todo.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strings.TrimSpace(description) == "" {
		return todo.Task{}, &todo.ParseError{Field: "task", Value: description, Err: errors.New("must not be empty")}
	}
	task, err := todo.NewTask(description, priority, dueDate)
	if err != nil {
		return todo.Task{}, err
	}

	s, err := a.open(employee)
	if err != nil {
		return todo.Task{}, err
	}
	if err := s.Add(task); err != nil {
		return todo.Task{}, err
	}
	if err := s.Save(); err != nil {
		return todo.Task{}, err
	}
	a.logger.Info("task added", "employee", s.Employee(), "task", task.Description, "due", task.DueDate)
	return task, nil
}

// Tasks returns employee's tasks in due order.
func (a *App) Tasks(employee string) ([]todo.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.open(employee)
	if err != nil {
		return nil, err
	}
	return s.List(), nil
}

// CompleteTask marks the task at the 1-based index as completed.
func (a *App) CompleteTask(employee string, index int) (todo.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.open(employee)
	if err != nil {
		return todo.Task{}, err
	}
	if err := s.Complete(index); err != nil {
		return todo.Task{}, err
	}
	if err := s.Save(); err != nil {
		return todo.Task{}, err
	}
	task, _ := s.Get(index)
	a.logger.Info("task completed", "employee", s.Employee(), "task", task.Description)
	return task, nil
}

// DeleteTask removes the task at the 1-based index and returns it.
func (a *App) DeleteTask(employee string, index int) (todo.Task, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	s, err := a.open(employee)
	if err != nil {
		return todo.Task{}, err
	}
	task, err := s.Get(index)
	if err != nil {
		return todo.Task{}, err
	}
	if err := s.Delete(index); err != nil {
		return todo.Task{}, err
	}
	if err := s.Save(); err != nil {
		return todo.Task{}, err
	}
	a.logger.Info("task deleted", "employee", s.Employee(), "task", task.Description)
	return task, nil
}

// AllTasks loads every employee's tasks. A store that fails to load is
// reported in its entry and does not stop the others.
func (a *App) AllTasks() ([]EmployeeTasks, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return nil, err
	}
	employees := dir.List()
	out := make([]EmployeeTasks, 0, len(employees))
	for _, emp := range employees {
		tasks, err := a.tasks.Tasks(emp.ID)
		out = append(out, EmployeeTasks{Employee: emp, Tasks: tasks, Err: err})
	}
	return out, nil
}

// Scan evaluates every employee's tasks at now without sending anything.
func (a *App) Scan(now time.Time) (reminder.Scan, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, err := a.coordinator()
	if err != nil {
		return reminder.Scan{}, err
	}
	return c.Run(now)
}

// Notify scans at now and sends the due reminders.
func (a *App) Notify(ctx context.Context, now time.Time) (reminder.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, err := a.coordinator()
	if err != nil {
		return reminder.Result{}, err
	}
	return c.Notify(ctx, now)
}

func (a *App) coordinator() (*reminder.Coordinator, error) {
	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return nil, err
	}
	opts := append([]reminder.Option{reminder.WithLogger(a.logger)}, a.reminderOpts...)
	return reminder.New(dir, a.tasks, a.notifier, opts...), nil
}

// lookup finds id in a freshly loaded directory.
func (a *App) lookup(id string) (store.Employee, bool, error) {
	norm, err := store.ValidateIdentifier(id)
	if err != nil {
		return store.Employee{}, false, err
	}
	dir, err := store.OpenDirectory(a.employeesFile)
	if err != nil {
		return store.Employee{}, false, err
	}
	addr, ok := dir.Lookup(norm)
	return store.Employee{ID: norm, Address: addr}, ok, nil
}

// open loads the task store of a registered employee.
func (a *App) open(employee string) (*store.TaskStore, error) {
	emp, ok, err := a.lookup(employee)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEmployee, emp.ID)
	}
	return a.tasks.Open(emp.ID)
}
