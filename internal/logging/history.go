package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Scan event types.
const (
	EventScan     = "scan"
	EventReminder = "reminder"
	EventSkipped  = "skipped"
	EventFailed   = "failed"
	EventError    = "error"
	EventSummary  = "summary"
)

// ScanEvent is one line of a scan history file.
type ScanEvent struct {
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Employee string    `json:"employee,omitempty"`
	Address  string    `json:"address,omitempty"`
	Index    int       `json:"index,omitempty"`
	Task     string    `json:"task,omitempty"`
	DueDate  string    `json:"due_date,omitempty"`
	Message  string    `json:"message,omitempty"`
	Error    string    `json:"error,omitempty"`
	Sent     int       `json:"sent,omitempty"`
	Skipped  int       `json:"skipped,omitempty"`
	Failed   int       `json:"failed,omitempty"`
}

// ScanLog writes one JSONL history file per scan run.
type ScanLog struct {
	Dir   string
	RunID string
	Path  string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewScanLog creates the history directory and a new run file inside it.
func NewScanLog(dir string) (*ScanLog, error) {
	if dir == "" {
		return nil, fmt.Errorf("history dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	id := runID()
	path := filepath.Join(dir, id+".jsonl")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create history file: %w", err)
	}

	return &ScanLog{
		Dir:   dir,
		RunID: id,
		Path:  path,
		file:  file,
		enc:   json.NewEncoder(file),
	}, nil
}

// Write appends event as one JSON line. A zero Time is set to now.
func (l *ScanLog) Write(event ScanEvent) error {
	if l == nil {
		return nil
	}
	if event.Time.IsZero() {
		event.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return fmt.Errorf("history file closed")
	}
	if err := l.enc.Encode(event); err != nil {
		return fmt.Errorf("write history event: %w", err)
	}
	return nil
}

// Close closes the history file.
func (l *ScanLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func runID() string {
	return fmt.Sprintf("%s-%d", time.Now().UTC().Format("20060102-150405.000000"), os.Getpid())
}

// ReadScanLog decodes every event in a history file.
func ReadScanLog(path string) ([]ScanEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer file.Close()

	var events []ScanEvent
	scanner := bufio.NewScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var ev ScanEvent
		if err := json.Unmarshal([]byte(text), &ev); err != nil {
			return events, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("read history file: %w", err)
	}
	return events, nil
}

// ListScanLogs returns the history files in dir, newest first.
func ListScanLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read history dir: %w", err)
	}

	type logFile struct {
		path    string
		modTime time.Time
	}
	var files []logFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".jsonl") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, logFile{path: filepath.Join(dir, entry.Name()), modTime: info.ModTime()})
	}

	// Run IDs start with a UTC timestamp, so names break mtime ties.
	sort.Slice(files, func(i, j int) bool {
		if !files[i].modTime.Equal(files[j].modTime) {
			return files[i].modTime.After(files[j].modTime)
		}
		return files[i].path > files[j].path
	})

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

// FindLatestLog returns the newest history file in dir, or "" when none exist.
func FindLatestLog(dir string) (string, error) {
	files, err := ListScanLogs(dir)
	if err != nil || len(files) == 0 {
		return "", err
	}
	return files[0], nil
}

// TailLog writes the last n lines of path to w. n <= 0 writes the whole file.
func TailLog(w io.Writer, path string, n int) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n <= 0 {
		_, err = io.Copy(w, file)
		return err
	}

	ring := make([]string, 0, n)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if len(ring) == n {
			ring = ring[1:]
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read log file: %w", err)
	}
	for _, line := range ring {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
