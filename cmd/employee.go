package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/ledger"
	"github.com/nibzard/taskremind/internal/utils"
)

// EmployeeCommand is the employee command handler.
type EmployeeCommand struct {
	config *config.Config
}

// NewEmployeeCommand creates a new employee command.
func NewEmployeeCommand(cfg *config.Config) *EmployeeCommand {
	return &EmployeeCommand{
		config: cfg,
	}
}

// Run executes the employee command.
func (c *EmployeeCommand) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.printUsage()
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "add", "set":
		return c.runAdd(subargs)
	case "list", "ls":
		return c.runList(subargs)
	case "remove", "rm":
		return c.runRemove(subargs)
	case "help", "-h", "--help":
		return c.printUsage()
	default:
		_ = c.printUsage()
		return fmt.Errorf("unknown employee command: %s", subcommand)
	}
}

func (c *EmployeeCommand) printUsage() error {
	fmt.Fprintf(os.Stderr, `Usage: taskremind employee <command> [arguments]

Commands:
  add <id> <address>    Add an employee or change their address
  list, ls              List employees
  remove, rm <id>...    Remove employees (their task files are kept)

Examples:
  taskremind employee add janed jane@example.com
  taskremind employee list
`)
	return nil
}

func (c *EmployeeCommand) runAdd(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: taskremind employee add <id> <address>")
	}
	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	emp, err := s.app.AddEmployee(args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("Employee %s added (%s).\n", emp.ID, emp.Address)
	return nil
}

func (c *EmployeeCommand) runList(args []string) error {
	fs := flag.NewFlagSet("taskremind employee list", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	employees, err := s.app.Employees()
	if err != nil {
		return err
	}
	if len(employees) == 0 {
		fmt.Println("No employees.")
		return nil
	}
	for i, emp := range employees {
		fmt.Printf("%d. %s - %s\n", i+1, emp.ID, emp.Address)
	}
	return nil
}

// forgetReminders drops the ledger rows of removed employees so a re-added
// identifier starts with a clean history.
func forgetReminders(path string, ids []string) (err error) {
	l, err := ledger.Open(path)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	defer func() {
		if cerr := l.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	for _, id := range ids {
		if _, err := l.Forget(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *EmployeeCommand) runRemove(args []string) error {
	ids := utils.ParseIdentifiers(args)
	if len(ids) == 0 {
		return fmt.Errorf("usage: taskremind employee remove <id>[,<id>...]")
	}
	s, err := openSession(c.config, false)
	if err != nil {
		return err
	}
	removed := make([]string, 0, len(ids))
	var removeErr error
	for _, id := range ids {
		if removeErr = s.app.RemoveEmployee(id); removeErr != nil {
			break
		}
		removed = append(removed, id)
		fmt.Printf("Employee %s removed.\n", id)
	}
	// Ids already gone from the directory lose their history even when a
	// later id fails.
	if c.config.Dedupe && len(removed) > 0 {
		if err := forgetReminders(c.config.LedgerFile, removed); err != nil {
			return errors.Join(removeErr, err)
		}
	}
	return removeErr
}
