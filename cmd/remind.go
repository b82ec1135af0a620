package cmd

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/nibzard/taskremind/internal/config"
	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/reminder"
	"github.com/nibzard/taskremind/internal/schedule"
	"github.com/nibzard/taskremind/internal/server"
	"github.com/nibzard/taskremind/internal/todo"
)

// remindCommand runs one scan and sends the due reminders.
func remindCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	fs := flag.NewFlagSet("taskremind remind", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Print the reminders without sending them")
	at := fs.String("at", "", "Evaluate at this time instead of now ("+due.AtLayout+" or "+todo.DateLayout+")")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	now := time.Now()
	if *at != "" {
		now, err = due.ParseAt(*at, time.Local)
		if err != nil {
			return err
		}
	}

	s, err := openSession(cfg, !*dryRun)
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	if *dryRun {
		scan, scanErr := s.app.Scan(now)
		if scanErr != nil && scan.At.IsZero() {
			return scanErr
		}
		printScan(scan)
		if scanErr != nil {
			return fmt.Errorf("%d task(s) could not be evaluated", len(scan.Errors))
		}
		return nil
	}

	result, notifyErr := s.app.Notify(ctx, now)
	if notifyErr != nil && result.Scan.At.IsZero() {
		return notifyErr
	}
	var last lastNotifier
	if s.ledger != nil {
		last = s.ledger
	}
	printResult(result, last)
	if notifyErr != nil {
		return fmt.Errorf("reminders finished with %d failure(s) and %d evaluation error(s)",
			len(result.Failed), len(result.Scan.Errors))
	}
	return nil
}

// daemonCommand sends reminders on the configured cron schedule until
// interrupted.
func daemonCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	fs := flag.NewFlagSet("taskremind daemon", flag.ContinueOnError)
	runNow := fs.Bool("now", false, "Also run one scan at startup")
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

	sched, err := schedule.New(s.app, cfg.Schedule,
		schedule.WithLogger(s.logger),
		schedule.WithRunImmediately(*runNow),
	)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	<-sched.Stop().Done()
	return nil
}

// serveCommand serves the JSON API, optionally with the scheduler.
func serveCommand(ctx context.Context, cfg *config.Config, args []string) (err error) {
	fs := flag.NewFlagSet("taskremind serve", flag.ContinueOnError)
	withDaemon := fs.Bool("with-daemon", false, "Also send reminders on the configured schedule")
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

	if *withDaemon {
		sched, err := schedule.New(s.app, cfg.Schedule, schedule.WithLogger(s.logger))
		if err != nil {
			return err
		}
		if err := sched.Start(ctx); err != nil {
			return err
		}
		defer func() { <-sched.Stop().Done() }()
	}

	srv := server.New(s.app, server.WithLogger(s.logger))
	return srv.Listen(ctx, cfg.ListenAddr)
}

func printScan(scan reminder.Scan) {
	fmt.Printf("Scan at %s\n", scan.At.Format(due.AtLayout))
	if len(scan.Reminders) == 0 {
		fmt.Println("No reminders due.")
	}
	for _, r := range scan.Reminders {
		fmt.Printf("  %s <%s> #%d: %s\n", r.Employee, r.Address, r.Index, r.Message)
	}
	printScanErrors(scan.Errors)
}

// lastNotifier reports when a reminder was last delivered.
type lastNotifier interface {
	Last(employee, key string) (time.Time, bool, error)
}

func printResult(result reminder.Result, ledger lastNotifier) {
	for _, r := range result.Sent {
		fmt.Printf("Sent to %s <%s>: %s\n", r.Employee, r.Address, r.Task.Description)
	}
	for _, r := range result.Skipped {
		when := ""
		if ledger != nil {
			if at, ok, err := ledger.Last(r.Employee, r.Task.Key()); err == nil && ok {
				when = " at " + at.Local().Format("2006-01-02 15:04")
			}
		}
		fmt.Printf("Skipped %s: %s (already reminded%s)\n", r.Employee, r.Task.Description, when)
	}
	for _, f := range result.Failed {
		fmt.Printf("Failed %s: %s: %v\n", f.Reminder.Employee, f.Reminder.Task.Description, f.Err)
	}
	if len(result.Sent)+len(result.Skipped)+len(result.Failed) == 0 {
		fmt.Println("No reminders due.")
	}
	printScanErrors(result.Scan.Errors)
}

func printScanErrors(errs []error) {
	for _, err := range errs {
		fmt.Printf("  warning: %v\n", err)
	}
}
