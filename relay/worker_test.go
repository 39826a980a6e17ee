package relay

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// fakeSource feeds scripted payloads and counts every blocking read
type fakeSource struct {
	reads atomic.Int32
	keys  chan rune
	errCh chan error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		keys:  make(chan rune, 16),
		errCh: make(chan error, 1),
	}
}

func (s *fakeSource) ReadEvent() (rune, error) {
	s.reads.Add(1)
	select {
	case r := <-s.keys:
		return r, nil
	case err := <-s.errCh:
		return 0, err
	}
}

func TestWorkerNoSpeculativeReads(t *testing.T) {
	src := newFakeSource()
	c := NewCoordinator[rune]()
	w := c.Worker(src)

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	// No request has been sent; the worker must not touch the source
	time.Sleep(50 * time.Millisecond)
	if got := src.reads.Load(); got != 0 {
		t.Errorf("Expected zero reads before first request, got %d", got)
	}

	src.keys <- 'a'
	c.requests <- InputRequest{Token: 1}

	ev := <-c.events
	if ev.Kind != KindInput || ev.Input != 'a' || ev.Token != 1 {
		t.Errorf("Unexpected event: %+v", ev)
	}
	if got := src.reads.Load(); got != 1 {
		t.Errorf("Expected exactly one read after one request, got %d", got)
	}

	c.requests <- InputRequest{Shutdown: true}
	if err := <-done; err != nil {
		t.Errorf("Expected clean exit, got %v", err)
	}
}

func TestWorkerIdleDuringExternalOwnership(t *testing.T) {
	src := newFakeSource()
	c := NewCoordinator[rune]()
	w := c.Worker(src)

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	// Answer one request so the worker has been active at least once
	src.keys <- 'x'
	c.requests <- InputRequest{Token: 1}
	<-c.events

	// Simulate a spawned child owning the terminal: the coordinator
	// withholds requests, so the worker must stay parked
	time.Sleep(50 * time.Millisecond)
	if got := src.reads.Load(); got != 1 {
		t.Errorf("Expected no reads while requests are withheld, got %d total", got)
	}

	c.requests <- InputRequest{Shutdown: true}
	<-done
}

func TestWorkerShutdownWithoutFurtherEvents(t *testing.T) {
	src := newFakeSource()
	c := NewCoordinator[rune]()
	w := c.Worker(src)

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	c.requests <- InputRequest{Shutdown: true}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Expected nil error on shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Worker did not exit after Shutdown")
	}

	select {
	case ev := <-c.events:
		t.Errorf("Expected no event after shutdown, got %+v", ev)
	default:
	}
	if got := src.reads.Load(); got != 0 {
		t.Errorf("Expected no reads on shutdown, got %d", got)
	}
}

func TestWorkerRequestChannelClosedIsFatal(t *testing.T) {
	src := newFakeSource()
	c := NewCoordinator[rune]()
	w := c.Worker(src)

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	close(c.requests)

	select {
	case err := <-done:
		if !errors.Is(err, ErrRequestChannelClosed) {
			t.Errorf("Expected ErrRequestChannelClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Worker did not exit after request channel close")
	}
}

func TestWorkerSourceFailurePropagates(t *testing.T) {
	src := newFakeSource()
	c := NewCoordinator[rune]()
	w := c.Worker(src)

	done := make(chan error, 1)
	go func() { done <- w.Run() }()

	readErr := errors.New("tty gone")
	src.errCh <- readErr
	c.requests <- InputRequest{Token: 7}

	ev := <-c.events
	if ev.Kind != KindInputFailed {
		t.Fatalf("Expected KindInputFailed, got %+v", ev)
	}
	if ev.Token != 7 {
		t.Errorf("Expected failure tagged with token 7, got %d", ev.Token)
	}
	if !errors.Is(ev.Err, readErr) {
		t.Errorf("Expected wrapped read error, got %v", ev.Err)
	}

	if err := <-done; !errors.Is(err, readErr) {
		t.Errorf("Expected Run to return the read error, got %v", err)
	}
}
