// Package cmd implements the CLI command structure for taskremind.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nibzard/taskremind/internal/config"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskremind CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskremind", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	// With no subcommand, open the interactive menu.
	subcommand := "menu"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "employee", "employees", "emp":
		return NewEmployeeCommand(cfg).Run(ctx, remainingArgs)
	case "task", "tasks":
		return NewTaskCommand(cfg).Run(ctx, remainingArgs)
	case "remind":
		return remindCommand(ctx, cfg, remainingArgs)
	case "daemon":
		return daemonCommand(ctx, cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs)
	case "menu":
		return menuCommand(ctx, cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "export":
		return exportCommand(cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "history", "tail":
		return historyCommand(cfg, remainingArgs)
	case "config":
		return configCommand(cfg, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskremind version %s\n", Version)
	return nil
}

// configCommand prints the example config or the loaded config files.
func configCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskremind config", flag.ContinueOnError)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *example {
		fmt.Print(config.ExampleConfig())
		return nil
	}

	if len(cfg.ConfigFiles) == 0 {
		fmt.Println("Config files: (none, using defaults)")
	} else {
		fmt.Println("Config files:")
		for _, f := range cfg.ConfigFiles {
			fmt.Printf("  %s\n", f)
		}
	}
	fmt.Println()
	fmt.Printf("Data dir:       %s\n", cfg.DataDir)
	fmt.Printf("Employees file: %s\n", cfg.EmployeesFile)
	fmt.Printf("Tasks dir:      %s\n", cfg.TasksDir)
	fmt.Printf("Notifier:       %s\n", cfg.Notifier)
	fmt.Printf("Language:       %s\n", cfg.Language)
	fmt.Printf("Dedupe:         %t (%s)\n", cfg.Dedupe, cfg.LedgerFile)
	fmt.Printf("History:        %t (%s)\n", cfg.History, cfg.HistoryDir)
	fmt.Printf("Templates:      %s\n", cfg.TemplatesDir)
	fmt.Printf("Concurrency:    %d\n", cfg.Concurrency)
	fmt.Printf("Schedule:       %s\n", cfg.Schedule)
	fmt.Printf("Listen:         %s\n", cfg.ListenAddr)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "taskremind - Employee task lists with due-date reminders")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskremind [options] [command] [arguments]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  menu                          Interactive numbered menu (default command)")
	fmt.Fprintln(w, "  employee add|list|remove      Manage the employee directory")
	fmt.Fprintln(w, "  task add|list|complete|delete Manage an employee's tasks")
	fmt.Fprintln(w, "  remind [--dry-run] [--at T]   Send reminders for tasks due within a day")
	fmt.Fprintln(w, "  daemon [--now]                Send reminders on the configured schedule")
	fmt.Fprintln(w, "  serve [--with-daemon]         Serve the JSON API")
	fmt.Fprintln(w, "  tui                           Full-screen task browser")
	fmt.Fprintln(w, "  export [-o file]              Write all tasks to an xlsx workbook")
	fmt.Fprintln(w, "  doctor [-v]                   Check config and data files")
	fmt.Fprintln(w, "  history [-n lines] [--list]   Show the latest reminder history")
	fmt.Fprintln(w, "  config [--example]            Show effective configuration")
	fmt.Fprintln(w, "  version                       Show version information")
	fmt.Fprintln(w, "  help                          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  TASKREMIND_DATA_DIR        Data directory (default ~/.taskremind)")
	fmt.Fprintln(w, "  TASKREMIND_NOTIFIER        smtp, slack or log")
	fmt.Fprintln(w, "  TASKREMIND_LANGUAGE        en or es")
	fmt.Fprintln(w, "  TASKREMIND_SCHEDULE        Cron schedule with seconds")
	fmt.Fprintln(w, "  SMTP_PASSWORD              SMTP password (also read from .env)")
	fmt.Fprintln(w, "  SLACK_BOT_TOKEN            Slack bot token (also read from .env)")
}
