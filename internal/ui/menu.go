package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/reminder"
	"github.com/nibzard/taskremind/internal/store"
	"github.com/nibzard/taskremind/internal/todo"
	"github.com/nibzard/taskremind/internal/utils"
)

// MenuService is what the console menu needs from the application.
type MenuService interface {
	AddEmployee(id, address string) (store.Employee, error)
	Employees() ([]store.Employee, error)
	HasEmployee(id string) (bool, error)
	AddTask(employee, description, priority, dueDate string) (todo.Task, error)
	Tasks(employee string) ([]todo.Task, error)
	CompleteTask(employee string, index int) (todo.Task, error)
	DeleteTask(employee string, index int) (todo.Task, error)
	Notify(ctx context.Context, now time.Time) (reminder.Result, error)
}

// MenuOption configures the console menu.
type MenuOption func(*menu)

// WithMenuClock replaces time.Now for reminder scans.
func WithMenuClock(now func() time.Time) MenuOption {
	return func(m *menu) { m.now = now }
}

type menu struct {
	svc MenuService
	in  *bufio.Scanner
	out io.Writer
	now func() time.Time
}

// errInputClosed ends the menu when input runs out.
var errInputClosed = errors.New("input closed")

// RunMenu runs the interactive numbered menu until the user exits, input
// ends, or ctx is cancelled.
func RunMenu(ctx context.Context, svc MenuService, in io.Reader, out io.Writer, opts ...MenuOption) error {
	m := &menu{
		svc: svc,
		in:  bufio.NewScanner(in),
		out: out,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	err := m.mainMenu(ctx)
	if errors.Is(err, errInputClosed) {
		return nil
	}
	return err
}

func (m *menu) mainMenu(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(m.out, "\n--- Main Menu ---")
		fmt.Fprintln(m.out, "1. Add employee")
		fmt.Fprintln(m.out, "2. List employees")
		fmt.Fprintln(m.out, "3. Manage an employee's tasks")
		fmt.Fprintln(m.out, "4. Check and send reminders")
		fmt.Fprintln(m.out, "5. Exit")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := m.addEmployee(); err != nil {
				return err
			}
		case "2":
			m.listEmployees()
		case "3":
			id, err := m.prompt("Username: ")
			if err != nil {
				return err
			}
			ok, err := m.svc.HasEmployee(id)
			switch {
			case err != nil:
				fmt.Fprintf(m.out, "Error: %v\n", err)
			case !ok:
				fmt.Fprintln(m.out, "Employee not found.")
			default:
				if err := m.taskMenu(ctx, store.Employee{ID: utils.NormalizeIdentifier(id)}); err != nil {
					return err
				}
			}
		case "4":
			m.sendReminders(ctx)
		case "5":
			fmt.Fprintln(m.out, "Goodbye.")
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option.")
		}
	}
}

func (m *menu) taskMenu(ctx context.Context, emp store.Employee) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintf(m.out, "\n--- Tasks: %s ---\n", emp.ID)
		fmt.Fprintln(m.out, "1. Add task")
		fmt.Fprintln(m.out, "2. Complete task")
		fmt.Fprintln(m.out, "3. Delete task")
		fmt.Fprintln(m.out, "4. List tasks")
		fmt.Fprintln(m.out, "5. Back to main menu")

		choice, err := m.prompt("Select an option: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			if err := m.addTask(emp.ID); err != nil {
				return err
			}
		case "2":
			m.listTasks(emp.ID)
			index, err := m.promptIndex("Index of the task to complete: ")
			if err != nil {
				return err
			}
			if index == 0 {
				continue
			}
			if _, err := m.svc.CompleteTask(emp.ID, index); err != nil {
				m.report(err)
				continue
			}
			fmt.Fprintln(m.out, "Task marked as completed.")
		case "3":
			m.listTasks(emp.ID)
			index, err := m.promptIndex("Index of the task to delete: ")
			if err != nil {
				return err
			}
			if index == 0 {
				continue
			}
			if _, err := m.svc.DeleteTask(emp.ID, index); err != nil {
				m.report(err)
				continue
			}
			fmt.Fprintln(m.out, "Task deleted.")
		case "4":
			m.listTasks(emp.ID)
		case "5":
			return nil
		default:
			fmt.Fprintln(m.out, "Invalid option.")
		}
	}
}

func (m *menu) addEmployee() error {
	id, err := m.prompt("Username (first name plus initials of the surnames): ")
	if err != nil {
		return err
	}
	addr, err := m.prompt("Email address: ")
	if err != nil {
		return err
	}
	emp, err := m.svc.AddEmployee(id, addr)
	if err != nil {
		m.report(err)
		return nil
	}
	fmt.Fprintf(m.out, "Employee %s added.\n", emp.ID)
	return nil
}

func (m *menu) listEmployees() {
	employees, err := m.svc.Employees()
	if err != nil {
		m.report(err)
		return
	}
	if len(employees) == 0 {
		fmt.Fprintln(m.out, "No employees yet.")
		return
	}
	for i, emp := range employees {
		fmt.Fprintf(m.out, "%d. %s - %s\n", i+1, emp.ID, emp.Address)
	}
}

func (m *menu) addTask(employee string) error {
	desc, err := m.prompt("Task description: ")
	if err != nil {
		return err
	}
	priority, err := m.prompt("Priority (1. High, 2. Medium, 3. Low): ")
	if err != nil {
		return err
	}
	dueDate, err := m.prompt("Due date (dd-mm-yy): ")
	if err != nil {
		return err
	}
	if _, err := m.svc.AddTask(employee, desc, priority, dueDate); err != nil {
		m.report(err)
		return nil
	}
	fmt.Fprintln(m.out, "Task added.")
	return nil
}

func (m *menu) listTasks(employee string) {
	tasks, err := m.svc.Tasks(employee)
	if err != nil {
		m.report(err)
		return
	}
	if len(tasks) == 0 {
		fmt.Fprintln(m.out, "No tasks.")
		return
	}
	now := m.now()
	for i, t := range tasks {
		marker := ""
		if soon, _ := due.IsDueSoon(t, now); soon {
			marker = " (due soon)"
		}
		fmt.Fprintf(m.out, "%d. %s | Priority: %s | Due: %s | Status: %s%s\n",
			i+1, t.Description, t.Priority, t.DueDate, t.Status, marker)
	}
}

func (m *menu) sendReminders(ctx context.Context) {
	result, err := m.svc.Notify(ctx, m.now())
	for _, r := range result.Sent {
		fmt.Fprintf(m.out, "Reminder sent to %s (%s).\n", r.Employee, r.Address)
	}
	for _, r := range result.Skipped {
		fmt.Fprintf(m.out, "Already reminded %s about %q.\n", r.Employee, r.Task.Description)
	}
	if err != nil {
		m.report(err)
	}
	if len(result.Sent)+len(result.Skipped) == 0 && err == nil {
		fmt.Fprintln(m.out, "No reminders due.")
	}
}

func (m *menu) report(err error) {
	var ie *store.IndexError
	if errors.As(err, &ie) {
		fmt.Fprintln(m.out, "Invalid task index.")
		return
	}
	fmt.Fprintf(m.out, "Error: %v\n", err)
}

func (m *menu) prompt(label string) (string, error) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		if err := m.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(m.in.Text()), nil
}

// promptIndex reads a 1-based index. A non-number is reported and yields 0.
func (m *menu) promptIndex(label string) (int, error) {
	s, err := m.prompt(label)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintln(m.out, "Invalid task index.")
		return 0, nil
	}
	if n == 0 {
		fmt.Fprintln(m.out, "Invalid task index.")
	}
	return n, nil
}
