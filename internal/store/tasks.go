// Package store persists the employee directory and per-employee task lists
// as flat JSON files.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/todo"
	"github.com/nibzard/taskremind/internal/utils"
)

// ErrIndexOutOfRange is returned for task indices outside the list.
var ErrIndexOutOfRange = errors.New("task index out of range")

// ErrInvalidIdentifier is returned for identifiers that cannot name a file.
var ErrInvalidIdentifier = errors.New("invalid employee identifier")

// IndexError reports a 1-based task index outside [1, Len].
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	if e.Len == 0 {
		return fmt.Sprintf("task %d: no tasks", e.Index)
	}
	return fmt.Sprintf("task %d: must be between 1 and %d", e.Index, e.Len)
}

// Unwrap returns ErrIndexOutOfRange.
func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// ValidateIdentifier normalizes id and checks that it can name a task file.
func ValidateIdentifier(id string) (string, error) {
	norm := utils.NormalizeIdentifier(id)
	if norm == "" || norm == "." || norm == ".." || strings.ContainsAny(norm, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return norm, nil
}

// TaskDir locates per-employee task files under one directory.
type TaskDir struct {
	Dir string
}

// Path returns the task file path for employee.
func (d TaskDir) Path(employee string) (string, error) {
	id, err := ValidateIdentifier(employee)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.Dir, id+".json"), nil
}

// Open loads the task store of employee.
func (d TaskDir) Open(employee string) (*TaskStore, error) {
	return OpenTaskStore(d.Dir, employee)
}

// Tasks returns the sorted tasks of employee.
func (d TaskDir) Tasks(employee string) ([]todo.Task, error) {
	s, err := d.Open(employee)
	if err != nil {
		return nil, err
	}
	return s.List(), nil
}

// TaskStore is one employee's ordered task list.
type TaskStore struct {
	employee string
	path     string
	tasks    []todo.Task
}

// OpenTaskStore loads <dir>/<employee>.json. A missing file is created
// holding an empty list. Every task must carry a valid priority and status;
// the first one that does not fails the load with a *todo.ParseError.
// Unparseable due dates are kept and sort last.
func OpenTaskStore(dir, employee string) (*TaskStore, error) {
	id, err := ValidateIdentifier(employee)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, id+".json")

	data, err := readOrCreate(path, []byte("[]\n"))
	if err != nil {
		return nil, fmt.Errorf("open task store: %w", err)
	}

	tasks := make([]todo.Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parse task store %s: %w", path, err)
	}
	if tasks == nil {
		tasks = make([]todo.Task, 0)
	}
	for i, task := range tasks {
		if err := task.ValidateFields(); err != nil {
			return nil, fmt.Errorf("parse task store %s: task %d: %w", path, i+1, err)
		}
	}
	due.Sort(tasks)

	return &TaskStore{employee: id, path: path, tasks: tasks}, nil
}

// Employee returns the normalized owner identifier.
func (s *TaskStore) Employee() string {
	return s.employee
}

// Path returns the backing file path.
func (s *TaskStore) Path() string {
	return s.path
}

// Len returns the number of tasks.
func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// List returns a copy of the tasks in due order.
func (s *TaskStore) List() []todo.Task {
	return slices.Clone(s.tasks)
}

// Get returns the task at the 1-based index.
func (s *TaskStore) Get(index int) (todo.Task, error) {
	if err := s.checkIndex(index); err != nil {
		return todo.Task{}, err
	}
	return s.tasks[index-1], nil
}

// Add validates task, inserts it, and restores due order. An empty status
// becomes pending.
func (s *TaskStore) Add(task todo.Task) error {
	if task.Status == "" {
		task.Status = todo.StatusPending
	}
	if err := task.Validate(); err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	due.Sort(s.tasks)
	return nil
}

// Complete marks the task at the 1-based index as completed.
func (s *TaskStore) Complete(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks[index-1].Status = todo.StatusCompleted
	return nil
}

// Delete removes the task at the 1-based index.
func (s *TaskStore) Delete(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	s.tasks = slices.Delete(s.tasks, index-1, index)
	return nil
}

// Save writes the whole list back to disk.
func (s *TaskStore) Save() error {
	data, err := marshalFile(s.tasks)
	if err != nil {
		return fmt.Errorf("marshal task store: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write task store: %w", err)
	}
	return nil
}

func (s *TaskStore) checkIndex(index int) error {
	if index < 1 || index > len(s.tasks) {
		return &IndexError{Index: index, Len: len(s.tasks)}
	}
	return nil
}
