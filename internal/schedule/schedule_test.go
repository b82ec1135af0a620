package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nibzard/taskremind/internal/reminder"
)

type countingJob struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
	ran   chan struct{}
}

func newCountingJob() *countingJob {
	return &countingJob{ran: make(chan struct{}, 16)}
}

func (j *countingJob) Notify(_ context.Context, now time.Time) (reminder.Result, error) {
	j.mu.Lock()
	j.calls = append(j.calls, now)
	j.mu.Unlock()
	j.ran <- struct{}{}
	return reminder.Result{}, j.err
}

func (j *countingJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.calls)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"0 0 8 * * *", false},
		{"*/30 * * * * *", false},
		{"@daily", false},
		{"@every 1h", false},
		{"0 8 * * *", true},
		{"not a schedule", true},
		{"61 0 8 * * *", true},
	}
	for _, tt := range tests {
		err := Validate(tt.spec)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) = %v, wantErr %v", tt.spec, err, tt.wantErr)
		}
	}
}

func TestNewDefaultsAndRejects(t *testing.T) {
	s, err := New(newCountingJob(), "")
	if err != nil {
		t.Fatal(err)
	}
	if s.Schedule() != DefaultSchedule {
		t.Errorf("Schedule = %q, want default", s.Schedule())
	}
	if !s.Next().IsZero() {
		t.Error("Next should be zero before Start")
	}
	if _, err := New(newCountingJob(), "every morning"); err == nil {
		t.Error("expected error for bad schedule")
	}
}

func TestRunNowUsesClock(t *testing.T) {
	job := newCountingJob()
	fixed := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	s, err := New(job, DefaultSchedule, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RunNow(context.Background()); err != nil {
		t.Fatal(err)
	}
	if job.count() != 1 || !job.calls[0].Equal(fixed) {
		t.Errorf("calls = %v", job.calls)
	}

	job.err = errors.New("smtp down")
	if _, err := s.RunNow(context.Background()); !errors.Is(err, job.err) {
		t.Errorf("RunNow error = %v", err)
	}
}

func TestStartRunsOnSchedule(t *testing.T) {
	job := newCountingJob()
	s, err := New(job, "@every 1s")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.Start(ctx); err == nil {
		t.Error("second Start should fail")
	}
	if s.Next().IsZero() {
		t.Error("Next should be set after Start")
	}

	select {
	case <-job.ran:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduled job did not run")
	}
}

func TestStartRunImmediately(t *testing.T) {
	job := newCountingJob()
	s, err := New(job, DefaultSchedule, WithRunImmediately(true))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	<-s.Stop().Done()
	if job.count() != 1 {
		t.Errorf("calls = %d, want 1", job.count())
	}
}

func TestRestartKeepsSingleEntry(t *testing.T) {
	s, err := New(newCountingJob(), DefaultSchedule)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Start(context.Background()); err != nil {
			t.Fatalf("start %d: %v", i+1, err)
		}
		if n := len(s.cron.Entries()); n != 1 {
			t.Errorf("start %d: entries = %d, want 1", i+1, n)
		}
		<-s.Stop().Done()
		if n := len(s.cron.Entries()); n != 0 {
			t.Errorf("stop %d: entries = %d, want 0", i+1, n)
		}
	}
	if !s.Next().IsZero() {
		t.Error("Next should be zero after Stop")
	}
}

func TestUpdateSchedule(t *testing.T) {
	s, err := New(newCountingJob(), DefaultSchedule)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	if err := s.UpdateSchedule("bogus"); err == nil {
		t.Error("expected error")
	}
	if s.Schedule() != DefaultSchedule {
		t.Errorf("bad update replaced schedule: %q", s.Schedule())
	}

	if err := s.UpdateSchedule("0 30 9 * * *"); err != nil {
		t.Fatal(err)
	}
	if s.Schedule() != "0 30 9 * * *" {
		t.Errorf("Schedule = %q", s.Schedule())
	}
	next := s.Next()
	if next.Hour() != 9 || next.Minute() != 30 {
		t.Errorf("Next = %v, want 09:30", next)
	}
}
