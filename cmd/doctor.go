package cmd

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/ledger"
	"github.com/nibzard/taskremind/internal/logging"
	"github.com/nibzard/taskremind/internal/schedule"
	"github.com/nibzard/taskremind/internal/store"
	"github.com/nibzard/taskremind/internal/templates"
	"github.com/nibzard/taskremind/internal/todo"
)

// doctorCommand checks config, data files, and lists overdue tasks. It
// never creates missing files.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskremind doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return runDoctor(cfg, time.Now(), *verbose)
}

func runDoctor(cfg *config.Config, now time.Time, verbose bool) error {
	fmt.Println("taskremind doctor")
	fmt.Println("=================")
	fmt.Println()

	allOK := true

	// Config
	fmt.Println("Config:")
	if len(cfg.ConfigFiles) == 0 {
		fmt.Println("  ⚠️  No config file (using defaults)")
	}
	for _, f := range cfg.ConfigFiles {
		fmt.Printf("  ✅ %s\n", f)
	}
	if err := cfg.ValidateNotifier(); err != nil {
		fmt.Printf("  ❌ Notifier %s: %v\n", cfg.Notifier, err)
		allOK = false
	} else {
		fmt.Printf("  ✅ Notifier: %s\n", cfg.Notifier)
	}
	if err := schedule.Validate(cfg.Schedule); err != nil {
		fmt.Printf("  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Printf("  ✅ Schedule: %s\n", cfg.Schedule)
	}
	checkTemplates(cfg, &allOK)
	fmt.Println()

	// Data directory
	fmt.Printf("Data directory: %s\n", cfg.DataDir)
	if info, err := os.Stat(cfg.DataDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created on first use)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else if !info.IsDir() {
		fmt.Println("  ❌ Error: path is not a directory")
		allOK = false
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Employee directory
	fmt.Printf("Employee directory: %s\n", cfg.EmployeesFile)
	var employees []store.Employee
	data, err := os.ReadFile(cfg.EmployeesFile)
	switch {
	case os.IsNotExist(err):
		fmt.Println("  ⚠️  Not found (will be created on first use)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	default:
		result := todo.ValidateDirectoryFile(data)
		if !result.Valid {
			fmt.Println("  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Printf("     - %v\n", e)
			}
			allOK = false
			break
		}
		dir, err := store.OpenDirectory(cfg.EmployeesFile)
		if err != nil {
			fmt.Printf("  ❌ Load error: %v\n", err)
			allOK = false
			break
		}
		employees = dir.List()
		fmt.Printf("  ✅ Valid (%d employees)\n", len(employees))
	}
	fmt.Println()

	// Task files
	fmt.Printf("Task files: %s\n", cfg.TasksDir)
	tasks := store.TaskDir{Dir: cfg.TasksDir}
	known := make(map[string]bool, len(employees))
	var overdue []string
	for _, emp := range employees {
		path, err := tasks.Path(emp.ID)
		if err != nil {
			fmt.Printf("  ❌ %s: %v\n", emp.ID, err)
			allOK = false
			continue
		}
		known[filepath.Base(path)] = true

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			fmt.Printf("  ⚠️  %s: no task file yet\n", emp.ID)
			continue
		}
		if err != nil {
			fmt.Printf("  ❌ %s: %v\n", emp.ID, err)
			allOK = false
			continue
		}
		result := todo.ValidateTaskFile(data)
		if !result.Valid {
			fmt.Printf("  ❌ %s: validation failed:\n", emp.ID)
			for _, e := range result.Errors {
				fmt.Printf("     - %v\n", e)
			}
			allOK = false
			continue
		}

		var list []todo.Task
		if err := json.Unmarshal(data, &list); err != nil {
			fmt.Printf("  ❌ %s: %v\n", emp.ID, err)
			allOK = false
			continue
		}
		due.Sort(list)
		pending := 0
		for i, t := range list {
			if t.IsPending() {
				pending++
			}
			if late, _ := due.IsOverdue(t, now); late {
				overdue = append(overdue, fmt.Sprintf("%s #%d: %s (due %s)", emp.ID, i+1, t.Description, t.DueDate))
			}
		}
		fmt.Printf("  ✅ %s: %d tasks, %d pending\n", emp.ID, len(list), pending)
		if verbose {
			for i, t := range list {
				fmt.Printf("       %d. [%s] %s (%s, due %s)\n", i+1, t.Status, t.Description, t.Priority, t.DueDate)
			}
		}
	}
	for _, orphan := range orphanTaskFiles(cfg.TasksDir, known) {
		fmt.Printf("  ⚠️  %s: no matching employee\n", orphan)
	}
	fmt.Println()

	// Overdue tasks never trigger a reminder, so list them here.
	fmt.Println("Overdue pending tasks:")
	if len(overdue) == 0 {
		fmt.Println("  ✅ None")
	}
	for _, line := range overdue {
		fmt.Printf("  ⚠️  %s\n", line)
	}
	fmt.Println()

	// Ledger
	if cfg.Dedupe {
		fmt.Printf("Ledger: %s\n", cfg.LedgerFile)
		l, err := ledger.Open(cfg.LedgerFile)
		if err != nil {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		} else {
			_ = l.Close()
			fmt.Println("  ✅ OK")
		}
		fmt.Println()
	}

	// History
	if cfg.History || verbose {
		fmt.Printf("History directory: %s\n", cfg.HistoryDir)
		latest, err := logging.FindLatestLog(cfg.HistoryDir)
		switch {
		case err != nil:
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		case latest == "":
			fmt.Println("  ⚠️  No history yet")
		default:
			fmt.Printf("  ✅ Latest: %s\n", filepath.Base(latest))
		}
		fmt.Println()
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// checkTemplates renders the reminder template of the configured language
// against a sample task.
func checkTemplates(cfg *config.Config, allOK *bool) {
	src := templates.NewStore(cfg.TemplatesDir)
	name := templates.ReminderName(cfg.Language)
	_, custom, err := src.Load(name)
	if err == nil {
		_, err = templates.NewRenderer(src).Reminder(cfg.Language, templates.Data{
			Employee:    "sample",
			Address:     "sample@example.com",
			Description: "Sample task",
			Priority:    todo.PriorityHigh.String(),
			DueDate:     todo.FormatDueDate(time.Now()),
		})
	}
	switch {
	case err != nil:
		fmt.Printf("  ❌ Template %s: %v\n", name, err)
		*allOK = false
	case custom:
		fmt.Printf("  ✅ Template: %s\n", filepath.Join(cfg.TemplatesDir, name))
	default:
		fmt.Printf("  ✅ Template: built-in %s\n", name)
	}
}

// orphanTaskFiles lists task files whose employee is not in the directory.
func orphanTaskFiles(dir string, known map[string]bool) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") || known[e.Name()] {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}
