package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/logging"
)

// historyCommand prints the latest scan history file.
func historyCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskremind history", flag.ContinueOnError)
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List history files, newest first")
	summary := fs.Bool("summary", false, "Print a readable summary instead of raw JSONL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	if *list {
		files, err := logging.ListScanLogs(cfg.HistoryDir)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No history files found.")
		}
		for _, f := range files {
			fmt.Println(filepath.Base(f))
		}
		return nil
	}

	logPath := ""
	if len(fs.Args()) == 1 {
		logPath = fs.Args()[0]
		if !filepath.IsAbs(logPath) && filepath.Dir(logPath) == "." {
			logPath = filepath.Join(cfg.HistoryDir, logPath)
		}
	} else {
		latest, err := logging.FindLatestLog(cfg.HistoryDir)
		if err != nil {
			return fmt.Errorf("finding latest history: %w", err)
		}
		if latest == "" {
			fmt.Println("No history files found.")
			return nil
		}
		logPath = latest
	}

	if !*summary {
		return logging.TailLog(os.Stdout, logPath, *n)
	}

	events, err := logging.ReadScanLog(logPath)
	if err != nil {
		return err
	}
	for _, ev := range events {
		switch ev.Type {
		case logging.EventScan:
			fmt.Printf("%s scan\n", ev.Time.Format("2006-01-02 15:04"))
		case logging.EventReminder:
			fmt.Printf("  sent     %s #%d %s\n", ev.Employee, ev.Index, ev.Task)
		case logging.EventSkipped:
			fmt.Printf("  skipped  %s #%d %s\n", ev.Employee, ev.Index, ev.Task)
		case logging.EventFailed:
			fmt.Printf("  failed   %s #%d %s: %s\n", ev.Employee, ev.Index, ev.Task, ev.Error)
		case logging.EventError:
			fmt.Printf("  error    %s: %s\n", ev.Employee, ev.Error)
		case logging.EventSummary:
			fmt.Printf("  sent=%d skipped=%d failed=%d\n", ev.Sent, ev.Skipped, ev.Failed)
		}
	}
	return nil
}
