package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nibzard/taskremind/internal/due"
	"github.com/nibzard/taskremind/internal/todo"
)

func mustTask(t *testing.T, desc, priority, date string) todo.Task {
	t.Helper()
	task, err := todo.NewTask(desc, priority, date)
	if err != nil {
		t.Fatalf("NewTask(%q): %v", desc, err)
	}
	return task
}

func TestOpenTaskStoreCreatesMissingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tasks")

	s, err := OpenTaskStore(dir, "JaneD")
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
	if s.Employee() != "janed" {
		t.Errorf("Employee = %q, want janed", s.Employee())
	}
	data, err := os.ReadFile(filepath.Join(dir, "janed.json"))
	if err != nil {
		t.Fatalf("store file not created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("new store file = %q, want []", data)
	}
}

func TestOpenTaskStoreSortsOnLoad(t *testing.T) {
	dir := t.TempDir()
	content := `[
  {"task": "later", "priority": "1", "due_date": "25-10-26", "status": "Pendiente"},
  {"task": "low", "priority": "3", "due_date": "20-10-26", "status": "Pendiente"},
  {"task": "high", "priority": "1", "due_date": "20-10-26", "status": "Completada"}
]`
	if err := os.WriteFile(filepath.Join(dir, "janed.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenTaskStore(dir, "janed")
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}
	got := s.List()
	want := []string{"high", "low", "later"}
	for i, w := range want {
		if got[i].Description != w {
			t.Errorf("task %d = %q, want %q", i+1, got[i].Description, w)
		}
	}
}

func TestOpenTaskStoreMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "janed.json")

	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenTaskStore(dir, "janed"); err == nil {
		t.Error("expected error for malformed store")
	}

	bad := `[{"task":"a","priority":"9","due_date":"20-10-26","status":"Pendiente"}]`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := OpenTaskStore(dir, "janed")
	var pe *todo.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("expected ParseError for bad priority, got %v", err)
	}
}

func TestOpenTaskStoreRejectsMissingFields(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantField string
		wantTask  string
	}{
		{
			name: "priority missing before status missing",
			content: `[{"task":"no priority","due_date":"20-10-26","status":"Pendiente"},` +
				`{"task":"no status","priority":"1","due_date":"20-10-26"}]`,
			wantField: "priority",
			wantTask:  "task 1",
		},
		{
			name:      "missing status",
			content:   `[{"task":"ok","priority":"2","due_date":"20-10-26","status":"Pendiente"},{"task":"no status","priority":"1","due_date":"20-10-26"}]`,
			wantField: "status",
			wantTask:  "task 2",
		},
		{
			name:      "empty status",
			content:   `[{"task":"blank","priority":"1","due_date":"20-10-26","status":""}]`,
			wantField: "status",
			wantTask:  "task 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, "janed.json"), []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := OpenTaskStore(dir, "janed")
			var pe *todo.ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("OpenTaskStore error = %v, want ParseError", err)
			}
			if pe.Field != tt.wantField {
				t.Errorf("ParseError.Field = %q, want %q", pe.Field, tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantTask) {
				t.Errorf("error %q does not name %q", err, tt.wantTask)
			}
		})
	}
}

func TestOpenTaskStoreKeepsBadDueDate(t *testing.T) {
	dir := t.TempDir()
	content := `[{"task":"bad date","priority":"1","due_date":"20/10/26","status":"Pendiente"},` +
		`{"task":"short date","priority":"3","due_date":"5-3-26","status":"Pendiente"}]`
	if err := os.WriteFile(filepath.Join(dir, "janed.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := OpenTaskStore(dir, "janed")
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}
	got := s.List()
	if len(got) != 2 || got[0].Description != "short date" || got[1].Description != "bad date" {
		t.Errorf("List = %+v, want short date first and bad date last", got)
	}
	if got[0].DueDate != "5-3-26" {
		t.Errorf("DueDate = %q, want the stored text", got[0].DueDate)
	}
}

func TestOpenTaskStoreRejectsBadIdentifier(t *testing.T) {
	for _, id := range []string{"", "  ", "../x", `a\b`, ".."} {
		if _, err := OpenTaskStore(t.TempDir(), id); !errors.Is(err, ErrInvalidIdentifier) {
			t.Errorf("OpenTaskStore(%q) error = %v, want ErrInvalidIdentifier", id, err)
		}
	}
}

func TestAddKeepsOrder(t *testing.T) {
	s, err := OpenTaskStore(t.TempDir(), "janed")
	if err != nil {
		t.Fatal(err)
	}
	inputs := []todo.Task{
		mustTask(t, "c", "3", "22-10-26"),
		mustTask(t, "a", "2", "19-10-26"),
		mustTask(t, "b", "1", "22-10-26"),
		mustTask(t, "d", "1", "01-01-27"),
	}
	for _, task := range inputs {
		if err := s.Add(task); err != nil {
			t.Fatalf("Add(%s): %v", task.Description, err)
		}
		if !due.IsSorted(s.List()) {
			t.Fatalf("list not sorted after adding %s: %v", task.Description, s.List())
		}
	}
	var got []string
	for _, task := range s.List() {
		got = append(got, task.Description)
	}
	if strings.Join(got, ",") != "a,b,c,d" {
		t.Errorf("order = %v, want a,b,c,d", got)
	}
}

func TestAddValidates(t *testing.T) {
	s, err := OpenTaskStore(t.TempDir(), "janed")
	if err != nil {
		t.Fatal(err)
	}
	err = s.Add(todo.Task{Description: "x", Priority: todo.PriorityHigh, DueDate: "2026-10-20"})
	var pe *todo.ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Add with bad date: got %v, want ParseError", err)
	}
	err = s.Add(todo.Task{Description: "x", Priority: 5, DueDate: "20-10-26"})
	if !errors.As(err, &pe) {
		t.Errorf("Add with bad priority: got %v, want ParseError", err)
	}
	if s.Len() != 0 {
		t.Errorf("invalid tasks were stored: %v", s.List())
	}

	if err := s.Add(todo.Task{Description: "x", Priority: todo.PriorityLow, DueDate: "20-10-26"}); err != nil {
		t.Fatal(err)
	}
	if got := s.List()[0].Status; got != todo.StatusPending {
		t.Errorf("default status = %q, want Pendiente", got)
	}
}

func TestCompleteAndDeleteBounds(t *testing.T) {
	s, err := OpenTaskStore(t.TempDir(), "janed")
	if err != nil {
		t.Fatal(err)
	}
	for _, task := range []todo.Task{
		mustTask(t, "first", "1", "20-10-26"),
		mustTask(t, "second", "1", "21-10-26"),
	} {
		if err := s.Add(task); err != nil {
			t.Fatal(err)
		}
	}

	for _, idx := range []int{0, -1, 3, 100} {
		err := s.Complete(idx)
		if !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Complete(%d) = %v, want ErrIndexOutOfRange", idx, err)
		}
		var ie *IndexError
		if !errors.As(err, &ie) || ie.Index != idx || ie.Len != 2 {
			t.Errorf("Complete(%d) IndexError = %+v", idx, ie)
		}
		if err := s.Delete(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Delete(%d) = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
	if s.Len() != 2 {
		t.Fatalf("out-of-range calls changed the list: %v", s.List())
	}

	if err := s.Complete(2); err != nil {
		t.Fatalf("Complete(2): %v", err)
	}
	tasks := s.List()
	if tasks[0].Status != todo.StatusPending {
		t.Errorf("task 1 status = %q, want Pendiente", tasks[0].Status)
	}
	if tasks[1].Status != todo.StatusCompleted {
		t.Errorf("task 2 status = %q, want Completada", tasks[1].Status)
	}
	if tasks[1].Description != "second" || tasks[1].DueDate != "21-10-26" || tasks[1].Priority != todo.PriorityHigh {
		t.Errorf("Complete changed more than status: %+v", tasks[1])
	}

	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete(1): %v", err)
	}
	if s.Len() != 1 || s.List()[0].Description != "second" {
		t.Errorf("after Delete(1): %v", s.List())
	}
}

func TestIndexErrorOnEmptyStore(t *testing.T) {
	s, err := OpenTaskStore(t.TempDir(), "janed")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Delete(1) on empty store = %v", err)
	}
	if _, err := s.Get(1); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Get(1) on empty store = %v", err)
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir, "janed")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Add(mustTask(t, "Send report", "alta", "20-10-26")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		t.Fatal(err)
	}
	want := `[
  {
    "task": "Send report",
    "priority": "1",
    "due_date": "20-10-26",
    "status": "Pendiente"
  }
]
`
	if string(data) != want {
		t.Errorf("saved file:\n%s\nwant:\n%s", data, want)
	}
	if r := todo.ValidateTaskFile(data); !r.Valid {
		t.Errorf("saved file fails schema: %v", r.Errors)
	}

	reloaded, err := OpenTaskStore(dir, "janed")
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 1 || reloaded.List()[0] != s.List()[0] {
		t.Errorf("reloaded = %v, want %v", reloaded.List(), s.List())
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp.") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestTaskDir(t *testing.T) {
	d := TaskDir{Dir: t.TempDir()}
	path, err := d.Path("JaneD")
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "janed.json" {
		t.Errorf("Path = %s", path)
	}
	tasks, err := d.Tasks("janed")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 0 {
		t.Errorf("Tasks = %v, want empty", tasks)
	}
}
