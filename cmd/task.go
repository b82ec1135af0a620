package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/todo"
)

// TaskCommand is the task command handler.
type TaskCommand struct {
	config *config.Config
	now    func() time.Time
}

// NewTaskCommand creates a new task command.
func NewTaskCommand(cfg *config.Config) *TaskCommand {
	return &TaskCommand{
		config: cfg,
		now:    time.Now,
	}
}

// Run executes the task command.
func (c *TaskCommand) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "add", "new":
		return c.runAdd(subargs)
	case "list", "ls":
		return c.runList(subargs)
	case "complete", "done":
		return c.runComplete(subargs)
	case "delete", "rm":
		return c.runDelete(subargs)
	case "help", "-h", "--help":
		return c.printUsage()
	default:
		_ = c.printUsage()
		return fmt.Errorf("unknown task command: %s", subcommand)
	}
}

func (c *TaskCommand) printUsage() error {
	fmt.Fprintf(os.Stderr, `Usage: taskremind task <command> [arguments]

Commands:
  add <employee> <description> --priority N --due dd-mm-yy
                            Add a pending task (priority 1 high, 2 medium, 3 low)
  list, ls <employee>       List tasks in due order
  complete <employee> <n>   Mark task n as completed
  delete, rm <employee> <n> Delete task n

Task numbers are the 1-based positions shown by list.

Examples:
  taskremind task add janed "Submit report" --priority 1 --due 20-10-26
  taskremind task complete janed 1
`)
	return nil
}

func (c *TaskCommand) runAdd(args []string) error {
	fs := flag.NewFlagSet("taskremind task add", flag.ContinueOnError)
	priority := fs.String("priority", "2", "Priority (1 high, 2 medium, 3 low)")
	fs.StringVar(priority, "p", "2", "Priority (shorthand)")
	dueDate := fs.String("due", "", "Due date (dd-mm-yy)")

	// Allow flags after the positional arguments.
	positional, flags := splitPositional(args, 2)
	if err := fs.Parse(flags); err != nil {
		return err
	}
	positional = append(positional, fs.Args()...)
	if len(positional) != 2 {
		return fmt.Errorf("usage: taskremind task add <employee> <description> --priority N --due dd-mm-yy")
	}
	if *dueDate == "" {
		return fmt.Errorf("--due is required")
	}

	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	task, err := s.app.AddTask(positional[0], positional[1], *priority, *dueDate)
	if err != nil {
		return err
	}
	fmt.Printf("Task added: %s (%s, due %s).\n", task.Description, task.Priority, task.DueDate)
	return nil
}

func (c *TaskCommand) runList(args []string) error {
	fs := flag.NewFlagSet("taskremind task list", flag.ContinueOnError)
	pending := fs.Bool("pending", false, "Only show pending tasks")
	positional, flags := splitPositional(args, 1)
	if err := fs.Parse(flags); err != nil {
		return err
	}
	positional = append(positional, fs.Args()...)
	if len(positional) != 1 {
		return fmt.Errorf("usage: taskremind task list <employee>")
	}

	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	tasks, err := s.app.Tasks(positional[0])
	if err != nil {
		return err
	}
	printTaskList(tasks, c.now(), *pending)
	return nil
}

func (c *TaskCommand) runComplete(args []string) error {
	employee, index, err := parseTaskRef("complete", args)
	if err != nil {
		return err
	}
	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	task, err := s.app.CompleteTask(employee, index)
	if err != nil {
		return err
	}
	fmt.Printf("Task marked as completed: %s\n", task.Description)
	return nil
}

func (c *TaskCommand) runDelete(args []string) error {
	employee, index, err := parseTaskRef("delete", args)
	if err != nil {
		return err
	}
	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	task, err := s.app.DeleteTask(employee, index)
	if err != nil {
		return err
	}
	fmt.Printf("Task deleted: %s\n", task.Description)
	return nil
}

func parseTaskRef(verb string, args []string) (string, int, error) {
	if len(args) != 2 {
		return "", 0, fmt.Errorf("usage: taskremind task %s <employee> <n>", verb)
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("task number must be an integer: %q", args[1])
	}
	return args[0], index, nil
}

// splitPositional takes up to n leading non-flag arguments off args.
func splitPositional(args []string, n int) (positional, rest []string) {
	for len(args) > 0 && len(positional) < n && !strings.HasPrefix(args[0], "-") {
		positional = append(positional, args[0])
		args = args[1:]
	}
	return positional, args
}

// printTaskList prints tasks with their 1-based numbers.
func printTaskList(tasks []todo.Task, now time.Time, pendingOnly bool) {
	shown := 0
	for i, t := range tasks {
		if pendingOnly && !t.IsPending() {
			continue
		}
		fmt.Printf("%d. %s | Priority: %s | Due: %s | Status: %s%s\n",
			i+1, t.Description, t.Priority, t.DueDate, t.Status, dueMarker(t, now))
		shown++
	}
	if shown == 0 {
		fmt.Println("No tasks.")
	}
}

func dueMarker(t todo.Task, now time.Time) string {
	if soon, err := due.IsDueSoon(t, now); err != nil {
		return " (invalid date)"
	} else if soon {
		return " (due soon)"
	}
	if overdue, _ := due.IsOverdue(t, now); overdue {
		return " (overdue)"
	}
	return ""
}
