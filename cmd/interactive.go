package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/ui"
)

// menuCommand runs the numbered console menu on stdin.
func menuCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	fs := flag.NewFlagSet("taskremind menu", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	s, err := openSession(cfg, true)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	return ui.RunMenu(ctx, s.app, os.Stdin, os.Stdout)
}

// tuiCommand launches the full-screen task browser.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskremind tui", flag.ContinueOnError)
	refresh := fs.Duration("refresh", 5*time.Second, "Reload interval")
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
	return ui.RunTUI(ctx, s.app, ui.WithRefreshInterval(*refresh))
}
