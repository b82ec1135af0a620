// Command taskremind manages per-employee task lists and sends due-date
// reminders.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nibzard/taskremind/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code: 130 when a signal cut the run short,
// 1 on any other error.
func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cmd.Run(ctx, args)
	switch {
	case err == nil:
		return 0
	case ctx.Err() != nil:
		fmt.Fprintln(os.Stderr, "\ntaskremind: interrupted")
		return 130
	default:
		fmt.Fprintf(os.Stderr, "taskremind: %v\n", err)
		return 1
	}
}
