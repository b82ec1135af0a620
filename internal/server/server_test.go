package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nibzard/taskremind/internal/app"
	"github.com/nibzard/taskremind/internal/export"
	"github.com/nibzard/taskremind/internal/notify"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type sentMessage struct {
	address string
	message string
}

type recorder struct {
	mu   sync.Mutex
	sent []sentMessage
	fail map[string]bool
}

func (r *recorder) Send(_ context.Context, address, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail[address] {
		return &notify.NotificationError{Address: address, Err: errors.New("mailbox full")}
	}
	r.sent = append(r.sent, sentMessage{address, message})
	return nil
}

func newTestServer(t *testing.T) (*Server, *recorder) {
	t.Helper()
	dir := t.TempDir()
	rec := &recorder{fail: map[string]bool{}}
	svc := app.New(filepath.Join(dir, "employees.json"), filepath.Join(dir, "tasks"), rec)
	return New(svc, WithClock(func() time.Time { return fixedNow })), rec
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	out := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, data, err)
		}
	}
	return resp.StatusCode, out
}

func TestEmployeeRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	code, body := do(t, s, http.MethodPost, "/api/employees", `{"id":" JaneD ","address":"jane@example.com"}`)
	if code != http.StatusCreated {
		t.Fatalf("create status = %d, body %v", code, body)
	}
	if body["id"] != "janed" {
		t.Errorf("id = %v, want janed", body["id"])
	}

	code, body = do(t, s, http.MethodGet, "/api/employees", "")
	if code != http.StatusOK {
		t.Fatalf("list status = %d", code)
	}
	if list, _ := body["employees"].([]any); len(list) != 1 {
		t.Errorf("employees = %v", body["employees"])
	}

	code, _ = do(t, s, http.MethodDelete, "/api/employees/janed", "")
	if code != http.StatusNoContent {
		t.Errorf("delete status = %d", code)
	}
	code, _ = do(t, s, http.MethodDelete, "/api/employees/janed", "")
	if code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", code)
	}
}

func TestStatusCodes(t *testing.T) {
	s, _ := newTestServer(t)
	if code, _ := do(t, s, http.MethodPost, "/api/employees", `{"id":"janed","address":"jane@example.com"}`); code != http.StatusCreated {
		t.Fatalf("setup failed: %d", code)
	}
	if code, _ := do(t, s, http.MethodPost, "/api/employees/janed/tasks", `{"task":"Report","priority":"1","due_date":"20-10-26"}`); code != http.StatusCreated {
		t.Fatalf("setup failed: %d", code)
	}

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad address", http.MethodPost, "/api/employees", `{"id":"bob","address":"not-an-email"}`, http.StatusBadRequest},
		{"bad identifier", http.MethodPost, "/api/employees", `{"id":"a/b","address":"a@example.com"}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/employees", `{"id":`, http.StatusBadRequest},
		{"bad priority", http.MethodPost, "/api/employees/janed/tasks", `{"task":"x","priority":"9","due_date":"20-10-26"}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/employees/janed/tasks", `{"task":"x","priority":"1","due_date":"2026-10-20"}`, http.StatusBadRequest},
		{"empty task", http.MethodPost, "/api/employees/janed/tasks", `{"task":" ","priority":"1","due_date":"20-10-26"}`, http.StatusBadRequest},
		{"unknown employee tasks", http.MethodGet, "/api/employees/nobody/tasks", "", http.StatusNotFound},
		{"unknown employee add", http.MethodPost, "/api/employees/nobody/tasks", `{"task":"x","priority":"1","due_date":"20-10-26"}`, http.StatusNotFound},
		{"index zero", http.MethodPost, "/api/employees/janed/tasks/0/complete", "", http.StatusNotFound},
		{"index past end", http.MethodDelete, "/api/employees/janed/tasks/2", "", http.StatusNotFound},
		{"index not a number", http.MethodDelete, "/api/employees/janed/tasks/first", "", http.StatusBadRequest},
		{"bad at", http.MethodGet, "/api/reminders?at=tomorrow", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := do(t, s, tt.method, tt.path, tt.body)
			if code != tt.want {
				t.Errorf("status = %d, want %d (body %v)", code, tt.want, body)
			}
			if _, ok := body["error"]; !ok {
				t.Errorf("error body missing: %v", body)
			}
		})
	}
}

func TestTaskLifecycle(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/employees", `{"id":"janed","address":"jane@example.com"}`)
	do(t, s, http.MethodPost, "/api/employees/janed/tasks", `{"task":"Later","priority":"3","due_date":"25-10-26"}`)
	do(t, s, http.MethodPost, "/api/employees/janed/tasks", `{"task":"Soon","priority":"2","due_date":"20-10-26"}`)

	code, body := do(t, s, http.MethodGet, "/api/employees/janed/tasks", "")
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	tasks := body["tasks"].([]any)
	if len(tasks) != 2 {
		t.Fatalf("tasks = %v", tasks)
	}
	first := tasks[0].(map[string]any)
	if first["task"] != "Soon" || first["index"] != float64(1) || first["due_soon"] != true || first["priority"] != "2" {
		t.Errorf("first task = %v", first)
	}
	second := tasks[1].(map[string]any)
	if second["due_soon"] != false {
		t.Errorf("second task due_soon = %v", second["due_soon"])
	}

	code, body = do(t, s, http.MethodPost, "/api/employees/janed/tasks/1/complete", "")
	if code != http.StatusOK || body["status"] != "Completada" {
		t.Errorf("complete = %d %v", code, body)
	}

	code, body = do(t, s, http.MethodDelete, "/api/employees/janed/tasks/2", "")
	if code != http.StatusOK || body["task"] != "Later" {
		t.Errorf("delete = %d %v", code, body)
	}
}

func TestReminderRoutes(t *testing.T) {
	s, rec := newTestServer(t)
	do(t, s, http.MethodPost, "/api/employees", `{"id":"janed","address":"jane@example.com"}`)
	do(t, s, http.MethodPost, "/api/employees", `{"id":"bob","address":"bob@example.com"}`)
	do(t, s, http.MethodPost, "/api/employees/janed/tasks", `{"task":"Submit report","priority":"1","due_date":"20-10-26"}`)
	do(t, s, http.MethodPost, "/api/employees/bob/tasks", `{"task":"Call client","priority":"2","due_date":"20-10-26"}`)
	rec.fail["bob@example.com"] = true

	code, body := do(t, s, http.MethodGet, "/api/reminders", "")
	if code != http.StatusOK {
		t.Fatalf("preview status = %d", code)
	}
	if rs := body["reminders"].([]any); len(rs) != 2 {
		t.Fatalf("preview reminders = %v", rs)
	}
	if len(rec.sent) != 0 {
		t.Fatal("preview must not send")
	}

	code, body = do(t, s, http.MethodGet, "/api/reminders?at=25-10-26-09:00", "")
	if code != http.StatusOK || len(body["reminders"].([]any)) != 0 {
		t.Errorf("preview at later date = %d %v", code, body)
	}

	code, body = do(t, s, http.MethodPost, "/api/reminders/send", "")
	if code != http.StatusOK {
		t.Fatalf("send status = %d", code)
	}
	sent := body["sent"].([]any)
	failed := body["failed"].([]any)
	if len(sent) != 1 || len(failed) != 1 {
		t.Fatalf("sent = %v, failed = %v", sent, failed)
	}
	if sent[0].(map[string]any)["employee"] != "janed" {
		t.Errorf("sent = %v", sent)
	}
	if failed[0].(map[string]any)["employee"] != "bob" {
		t.Errorf("failed = %v", failed)
	}
	if len(rec.sent) != 1 || !strings.Contains(rec.sent[0].message, "Submit report") {
		t.Errorf("recorded = %v", rec.sent)
	}
}

func TestExportRoute(t *testing.T) {
	s, _ := newTestServer(t)
	do(t, s, http.MethodPost, "/api/employees", `{"id":"janed","address":"jane@example.com"}`)
	do(t, s, http.MethodPost, "/api/employees/janed/tasks", `{"task":"Submit report","priority":"1","due_date":"20-10-26"}`)

	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, "/api/export", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != export.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	data, _ := io.ReadAll(resp.Body)
	// xlsx files are zip archives.
	if len(data) < 4 || string(data[:2]) != "PK" {
		t.Errorf("body is not an xlsx archive: %d bytes", len(data))
	}
}
