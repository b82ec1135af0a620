// Package notify delivers reminder messages to employees.
//
// Every adapter implements Notifier. Transport failures are returned as
// *NotificationError so callers can report them per recipient and carry on.
package notify

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
)

// Notifier sends one message to one address.
type Notifier interface {
	Send(ctx context.Context, address, message string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, address, message string) error

// Send calls f.
func (f NotifierFunc) Send(ctx context.Context, address, message string) error {
	return f(ctx, address, message)
}

// NotificationError reports a failed delivery to one recipient.
type NotificationError struct {
	Address string
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify %s: %v", e.Address, e.Err)
}

// Unwrap returns the underlying error.
func (e *NotificationError) Unwrap() error {
	return e.Err
}

func wrap(address string, err error) error {
	if err == nil {
		return nil
	}
	return &NotificationError{Address: address, Err: err}
}

// LogNotifier logs messages instead of sending them.
type LogNotifier struct {
	Logger *log.Logger
}

// NewLogNotifier returns a dry-run notifier writing to logger.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

// Send logs the message. It fails only when ctx is done.
func (n *LogNotifier) Send(ctx context.Context, address, message string) error {
	if err := ctx.Err(); err != nil {
		return wrap(address, err)
	}
	if n.Logger != nil {
		n.Logger.Info("dry run", "address", address, "message", message)
	}
	return nil
}
