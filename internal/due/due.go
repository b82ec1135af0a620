// Package due orders reminder tasks and decides which ones are due soon.
//
// Tasks are ordered by ascending due date and then by priority, High before
// Medium before Low. A task is due soon when it is pending and its due date
// falls in the closed interval [now, now+Window]. Overdue tasks never
// qualify.
//
// Everything here is pure and safe for concurrent use.
package due

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/nibzard/taskremind/internal/todo"
)

// Window is the length of the due-soon window.
const Window = 24 * time.Hour

// Compare orders a before b by due date, then priority. Tasks whose due
// date does not parse sort after all tasks with valid dates.
func Compare(a, b todo.Task) int {
	// Calendar order does not depend on the zone; UTC avoids DST gaps.
	da, errA := todo.ParseDueDate(a.DueDate, time.UTC)
	db, errB := todo.ParseDueDate(b.DueDate, time.UTC)

	switch {
	case errA != nil && errB == nil:
		return 1
	case errA == nil && errB != nil:
		return -1
	case errA == nil && errB == nil:
		if c := da.Compare(db); c != 0 {
			return c
		}
	}
	return cmp.Compare(a.Priority, b.Priority)
}

// Less reports whether a sorts before b.
func Less(a, b todo.Task) bool {
	return Compare(a, b) < 0
}

// Sort orders tasks in place. Equal tasks keep their relative order.
func Sort(tasks []todo.Task) {
	slices.SortStableFunc(tasks, Compare)
}

// IsSorted reports whether tasks are already in order.
func IsSorted(tasks []todo.Task) bool {
	return slices.IsSortedFunc(tasks, Compare)
}

// InWindow reports whether due lies in [now, now+Window].
func InWindow(due, now time.Time) bool {
	d := due.Sub(now)
	return d >= 0 && d <= Window
}

// IsDueSoon reports whether task should trigger a reminder at now. The due
// date is taken as midnight of that day in now's location. An unparseable
// due date is returned as a *todo.ParseError whatever the status.
func IsDueSoon(task todo.Task, now time.Time) (bool, error) {
	dueAt, err := task.Due(now.Location())
	if err != nil {
		return false, err
	}
	if !task.IsPending() {
		return false, nil
	}
	return InWindow(dueAt, now), nil
}

// Filter returns the tasks that are due soon at now along with their
// 1-based positions, and the errors of tasks that could not be evaluated.
func Filter(tasks []todo.Task, now time.Time) (soon []int, errs []error) {
	for i, t := range tasks {
		ok, err := IsDueSoon(t, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("task %d: %w", i+1, err))
			continue
		}
		if ok {
			soon = append(soon, i+1)
		}
	}
	return soon, errs
}

// AtLayout is the layout accepted for an explicit evaluation time.
const AtLayout = "02-01-06-15:04"

const shortAtLayout = "2-1-06-15:04"

// ParseAt parses an evaluation time in AtLayout, or a bare due date taken
// as midnight, in loc.
func ParseAt(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{AtLayout, shortAtLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	t, err := todo.ParseDueDate(s, loc)
	if err != nil {
		return time.Time{}, &todo.ParseError{Field: "at", Value: s, Err: fmt.Errorf("want %s or %s", AtLayout, todo.DateLayout)}
	}
	return t, nil
}

// IsOverdue reports whether a pending task's due date is already behind now.
func IsOverdue(task todo.Task, now time.Time) (bool, error) {
	dueAt, err := task.Due(now.Location())
	if err != nil {
		return false, err
	}
	return task.IsPending() && dueAt.Before(now), nil
}
