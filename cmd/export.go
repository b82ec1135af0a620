package cmd

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/export"
)

// exportCommand writes every employee's tasks to an xlsx workbook.
func exportCommand(cfg *config.Config, args []string) (err error) {
	fs := flag.NewFlagSet("taskremind export", flag.ContinueOnError)
	output := fs.String("o", "tasks.xlsx", "Output file")
	fs.StringVar(output, "output", "tasks.xlsx", "Output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openSession(cfg, false)
	if err != nil {
		return err
	}
	entries, err := s.app.AllTasks()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(*output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	f, err := os.Create(*output)
	if err != nil {
		return fmt.Errorf("creating %s: %w", *output, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := export.WriteXLSX(f, entries, time.Now()); err != nil {
		return err
	}
	rows := 0
	for _, e := range entries {
		rows += len(e.Tasks)
	}
	fmt.Printf("Exported %d task(s) for %d employee(s) to %s\n", rows, len(entries), *output)
	return nil
}
