package ui

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/notify"
)

var testNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type outbox struct {
	mu   sync.Mutex
	sent []string
}

func (o *outbox) notifier() notify.Notifier {
	return notify.NotifierFunc(func(_ context.Context, address, message string) error {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.sent = append(o.sent, address+": "+message)
		return nil
	})
}

func newTestApp(t *testing.T) (*app.App, *outbox) {
	t.Helper()
	dir := t.TempDir()
	box := &outbox{}
	return app.New(filepath.Join(dir, "employees.json"), filepath.Join(dir, "tasks"), box.notifier()), box
}

func runMenu(t *testing.T, svc MenuService, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := RunMenu(context.Background(), svc, in, &out, WithMenuClock(func() time.Time { return testNow })); err != nil {
		t.Fatalf("RunMenu: %v", err)
	}
	return out.String()
}

func TestMenuFullFlow(t *testing.T) {
	svc, box := newTestApp(t)
	out := runMenu(t, svc,
		"1", "JaneD", "jane@example.com",
		"2",
		"3", "janed",
		"1", "Archive files", "3", "30-10-26",
		"1", "Submit report", "1", "20-10-26",
		"4",
		"2", "2",
		"5",
		"4",
		"5",
	)

	for _, want := range []string{
		"Employee janed added.",
		"1. janed - jane@example.com",
		"Task added.",
		"1. Submit report | Priority: High | Due: 20-10-26 | Status: Pendiente (due soon)",
		"2. Archive files | Priority: Low | Due: 30-10-26 | Status: Pendiente",
		"Task marked as completed.",
		"Reminder sent to janed (jane@example.com).",
		"Goodbye.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}

	if len(box.sent) != 1 || !strings.Contains(box.sent[0], "Submit report") {
		t.Errorf("sent = %v", box.sent)
	}
	tasks, err := svc.Tasks("janed")
	if err != nil {
		t.Fatal(err)
	}
	if tasks[1].IsPending() {
		t.Error("second task should be completed")
	}
}

func TestMenuReportsBadInput(t *testing.T) {
	svc, _ := newTestApp(t)
	out := runMenu(t, svc,
		"9",
		"1", "bob", "not-an-email",
		"3", "ghost",
		"1", "janed", "jane@example.com",
		"3", "janed",
		"1", "Report", "7", "20-10-26",
		"1", "Report", "1", "2026-10-20",
		"2", "abc",
		"3", "5",
		"5",
		"4",
		"5",
	)
	for _, want := range []string{
		"Invalid option.",
		"invalid address",
		"Employee not found.",
		`invalid priority "7"`,
		`invalid due_date "2026-10-20"`,
		"Invalid task index.",
		"No tasks.",
		"No reminders due.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestMenuStopsAtEndOfInput(t *testing.T) {
	svc, _ := newTestApp(t)
	out := runMenu(t, svc, "2")
	if !strings.Contains(out, "No employees yet.") {
		t.Errorf("output = %s", out)
	}
}

func TestMenuCancelled(t *testing.T) {
	svc, _ := newTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RunMenu(ctx, svc, strings.NewReader("5\n"), &bytes.Buffer{})
	if err != context.Canceled {
		t.Errorf("RunMenu error = %v, want context.Canceled", err)
	}
}
