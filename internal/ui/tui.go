// Package ui provides the interactive terminal front ends: a numbered
// console menu and a full-screen task browser.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/todo"
)

// TUIService is what the task browser needs from the application.
type TUIService interface {
	AllTasks() ([]app.EmployeeTasks, error)
	CompleteTask(employee string, index int) (todo.Task, error)
	DeleteTask(employee string, index int) (todo.Task, error)
}

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiModel)

// WithRefreshInterval sets how often the task files are reloaded.
func WithRefreshInterval(d time.Duration) TUIOption {
	return func(m *tuiModel) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// WithClock replaces time.Now for due-soon highlighting.
func WithClock(now func() time.Time) TUIOption {
	return func(m *tuiModel) { m.now = now }
}

// RunTUI starts the task browser.
func RunTUI(ctx context.Context, svc TUIService, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(svc, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	employeeStyle = lipgloss.NewStyle().Bold(true)
	dueSoonStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	overdueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	doneStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	footerStyle   = lipgloss.NewStyle().Faint(true)
)

type tuiRow struct {
	employee string
	index    int
	task     todo.Task
	dueSoon  bool
	overdue  bool
	invalid  bool
}

type tuiModel struct {
	svc          TUIService
	now          func() time.Time
	tickInterval time.Duration
	entries      []app.EmployeeTasks
	rows         []tuiRow
	cursor       int
	loadErr      error
	message      string
	showHelp     bool
	hideDone     bool
}

type tickMsg time.Time

func newTUIModel(svc TUIService, opts ...TUIOption) *tuiModel {
	m := &tuiModel{
		svc:          svc,
		now:          time.Now,
		tickInterval: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.rows)-1 {
				m.cursor++
			}
		case "r", "f5":
			m.message = ""
			m.refresh()
		case "c":
			m.apply("completed", m.svc.CompleteTask)
		case "d":
			m.apply("deleted", m.svc.DeleteTask)
		case "p":
			m.hideDone = !m.hideDone
			m.buildRows()
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		m.refresh()
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Task Reminders") + "\n\n")

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading tasks: "+m.loadErr.Error()) + "\n\n")
		writeFooter(&b, m.tickInterval)
		return b.String()
	}

	if len(m.entries) == 0 {
		b.WriteString("  No employees yet.\n\n")
	}

	pos := 0
	for _, entry := range m.entries {
		b.WriteString(employeeStyle.Render(fmt.Sprintf("%s <%s>", entry.Employee.ID, entry.Employee.Address)) + "\n")
		if entry.Err != nil {
			b.WriteString("  " + errorStyle.Render(entry.Err.Error()) + "\n\n")
			continue
		}
		shown := 0
		for pos < len(m.rows) && m.rows[pos].employee == entry.Employee.ID {
			b.WriteString(m.formatRow(pos) + "\n")
			pos++
			shown++
		}
		if shown == 0 {
			b.WriteString("  No tasks.\n")
		}
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(m.message + "\n\n")
	}
	writeFooter(&b, m.tickInterval)
	return b.String()
}

func (m *tuiModel) formatRow(pos int) string {
	row := m.rows[pos]
	cursor := " "
	if pos == m.cursor {
		cursor = ">"
	}
	check := " "
	if !row.task.IsPending() {
		check = "x"
	}
	line := fmt.Sprintf("%s %d. [%s] %s | %s | %s", cursor, row.index, check, row.task.Description, row.task.Priority, row.task.DueDate)

	switch {
	case row.invalid:
		return errorStyle.Render(line + "  invalid date")
	case !row.task.IsPending():
		return doneStyle.Render(line)
	case row.dueSoon:
		return dueSoonStyle.Render(line + "  due soon")
	case row.overdue:
		return overdueStyle.Render(line + "  overdue")
	}
	return line
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *tuiModel) refresh() {
	entries, err := m.svc.AllTasks()
	if err != nil {
		m.loadErr = err
		m.entries = nil
		m.rows = nil
		return
	}
	m.loadErr = nil
	m.entries = entries
	m.buildRows()
}

func (m *tuiModel) buildRows() {
	now := m.now()
	m.rows = m.rows[:0]
	for _, entry := range m.entries {
		if entry.Err != nil {
			continue
		}
		for i, task := range entry.Tasks {
			if m.hideDone && !task.IsPending() {
				continue
			}
			row := tuiRow{employee: entry.Employee.ID, index: i + 1, task: task}
			soon, err := due.IsDueSoon(task, now)
			if err != nil {
				row.invalid = true
			} else {
				row.dueSoon = soon
				row.overdue, _ = due.IsOverdue(task, now)
			}
			m.rows = append(m.rows, row)
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = max(len(m.rows)-1, 0)
	}
}

func (m *tuiModel) apply(verb string, op func(string, int) (todo.Task, error)) {
	if len(m.rows) == 0 {
		return
	}
	row := m.rows[m.cursor]
	task, err := op(row.employee, row.index)
	if err != nil {
		m.message = errorStyle.Render("Error: " + err.Error())
	} else {
		m.message = fmt.Sprintf("Task %q %s.", task.Description, verb)
	}
	m.refresh()
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k down/j  Move the cursor\n")
	b.WriteString("  c            Complete the selected task\n")
	b.WriteString("  d            Delete the selected task\n")
	b.WriteString("  p            Toggle pending only\n")
	b.WriteString("  r, F5        Refresh data\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder, interval time.Duration) {
	b.WriteString(footerStyle.Render(fmt.Sprintf("Press h for help | q to quit | Refreshing every %s", interval)) + "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
