package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubRunner struct {
	ran chan struct{}
	err error
}

func (s *stubRunner) RunForAllUsers(ctx context.Context) (int, error) {
	select {
	case s.ran <- struct{}{}:
	default:
	}
	return 1, s.err
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("not a cron spec", &stubRunner{}); err == nil {
		t.Fatal("New was expected to fail for a bad cron spec, but didnt!")
	}
}

func TestNewAcceptsDailySpec(t *testing.T) {
	s, err := New("0 6 * * *", &stubRunner{})
	if err != nil {
		t.Fatalf("New failed for the default spec: %v\n", err)
	}
	if s == nil {
		t.Fatal("New returned a nil scheduler")
	}
}

func TestScheduledJobRuns(t *testing.T) {
	runner := &stubRunner{ran: make(chan struct{}, 1)}

	s, err := New("@every 10ms", runner)
	if err != nil {
		t.Fatalf("New failed: %v\n", err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-runner.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job never ran")
	}
}

func TestScheduledJobErrorDoesNotStopScheduler(t *testing.T) {
	runner := &stubRunner{ran: make(chan struct{}, 1), err: errors.New("boom")}

	s, err := New("@every 10ms", runner)
	if err != nil {
		t.Fatalf("New failed: %v\n", err)
	}

	s.Start()
	defer s.Stop()

	// The job fails every run; the scheduler must keep invoking it.
	for i := 0; i < 2; i++ {
		select {
		case <-runner.ran:
		case <-time.After(2 * time.Second):
			t.Fatalf("scheduled job did not run (iteration %d)", i)
		}
	}
}
