// Package todo defines reminder tasks and the on-disk task file format.
package todo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the fixed due date format (dd-mm-yy). New dates are
// written in it.
const DateLayout = "02-01-06"

// ShortDateLayout also reads days and months typed without a leading zero
// ("5-3-26"). Stored dates keep the text as typed.
const ShortDateLayout = "2-1-06"

// Priority is the urgency level of a task. Lower values are more urgent.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// Valid reports whether p is one of the three levels.
func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return fmt.Sprintf("Priority(%d)", int(p))
	}
}

// Label returns the Spanish label.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "Alta"
	case PriorityMedium:
		return "Media"
	case PriorityLow:
		return "Baja"
	default:
		return p.String()
	}
}

// ParsePriority parses a priority digit or level name.
func ParsePriority(s string) (Priority, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "1", "high", "alta":
		return PriorityHigh, nil
	case "2", "medium", "media":
		return PriorityMedium, nil
	case "3", "low", "baja":
		return PriorityLow, nil
	}
	return 0, &ParseError{Field: "priority", Value: s, Err: fmt.Errorf("must be 1 (high), 2 (medium) or 3 (low)")}
}

// MarshalJSON writes the priority as a quoted digit.
func (p Priority) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return nil, &ParseError{Field: "priority", Value: strconv.Itoa(int(p)), Err: fmt.Errorf("out of range")}
	}
	return json.Marshal(strconv.Itoa(int(p)))
}

// UnmarshalJSON accepts a quoted digit or name, or a bare number.
func (p *Priority) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParsePriority(s)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	}
	parsed, err := ParsePriority(string(data))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Status represents a task status.
type Status string

const (
	StatusPending   Status = "Pendiente"
	StatusCompleted Status = "Completada"
)

// ParseStatus parses a stored status, accepting the English names too.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pendiente", "pending":
		return StatusPending, nil
	case "completada", "completed", "done":
		return StatusCompleted, nil
	}
	return "", &ParseError{Field: "status", Value: s, Err: fmt.Errorf("must be %s or %s", StatusPending, StatusCompleted)}
}

// UnmarshalJSON normalizes the status on read.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Task is a single reminder task.
type Task struct {
	Description string   `json:"task"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"due_date"`
	Status      Status   `json:"status"`
}

// IsPending returns true if the task has not been completed.
func (t Task) IsPending() bool {
	return t.Status == StatusPending
}

// Due parses the task's due date as midnight in loc.
func (t Task) Due(loc *time.Location) (time.Time, error) {
	return ParseDueDate(t.DueDate, loc)
}

// Key identifies a task for reminder bookkeeping. Rescheduling a task
// changes its key.
func (t Task) Key() string {
	return t.DueDate + "|" + t.Description
}

// Validate checks the task invariants.
func (t Task) Validate() error {
	if err := t.ValidateFields(); err != nil {
		return err
	}
	if _, err := ParseDueDate(t.DueDate, time.UTC); err != nil {
		return err
	}
	return nil
}

// ValidateFields checks priority and status only. A task loaded from disk
// with a bad due date is still listed; it sorts last and is reported when
// evaluated. A missing priority or status key leaves the zero value, which
// fails here.
func (t Task) ValidateFields() error {
	if !t.Priority.Valid() {
		return &ParseError{Field: "priority", Value: strconv.Itoa(int(t.Priority)), Err: fmt.Errorf("must be 1, 2 or 3")}
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}

// NewTask builds a pending task from user input.
func NewTask(description, priority, dueDate string) (Task, error) {
	p, err := ParsePriority(priority)
	if err != nil {
		return Task{}, err
	}
	dueDate = strings.TrimSpace(dueDate)
	if _, err := ParseDueDate(dueDate, time.UTC); err != nil {
		return Task{}, err
	}
	return Task{
		Description: strings.TrimSpace(description),
		Priority:    p,
		DueDate:     dueDate,
		Status:      StatusPending,
	}, nil
}

// ParseDueDate parses a dd-mm-yy date as midnight in loc. Single-digit
// days and months are accepted.
func ParseDueDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	v := strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateLayout, v, loc)
	if err == nil {
		return t, nil
	}
	if t, serr := time.ParseInLocation(ShortDateLayout, v, loc); serr == nil {
		return t, nil
	}
	return time.Time{}, &ParseError{Field: "due_date", Value: s, Err: err}
}

// FormatDueDate formats t in the due date layout.
func FormatDueDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseError reports a task field that does not parse.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
