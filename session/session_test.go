package session

import (
	"errors"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Superchig/keyrelay/relay"
	"github.com/Superchig/keyrelay/terminal"
)

// scriptedSource feeds terminal events and counts reads; Close unblocks
type scriptedSource struct {
	reads  atomic.Int32
	events chan terminal.Event
	stopCh chan struct{}
}

func newScriptedSource() *scriptedSource {
	return &scriptedSource{
		events: make(chan terminal.Event, 16),
		stopCh: make(chan struct{}),
	}
}

func (s *scriptedSource) ReadEvent() (terminal.Event, error) {
	s.reads.Add(1)
	select {
	case ev := <-s.events:
		return ev, nil
	case <-s.stopCh:
		return terminal.Event{}, terminal.ErrSourceClosed
	}
}

func (s *scriptedSource) Close() {
	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
}

func keyEvent(r rune) terminal.Event {
	return terminal.Event{Type: terminal.EventKey, Key: terminal.KeyRune, Rune: r}
}

// recordingTTY records suspend/resume ordering
type recordingTTY struct {
	calls []string
}

func (t *recordingTTY) Suspend() error {
	t.calls = append(t.calls, "suspend")
	return nil
}

func (t *recordingTTY) Resume() error {
	t.calls = append(t.calls, "resume")
	return nil
}

func TestSessionRelaysInput(t *testing.T) {
	src := newScriptedSource()
	sess := New(src)
	sess.Start()
	defer sess.Close()

	src.events <- keyEvent('a')
	ev, err := sess.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Kind != relay.KindInput || ev.Input.Rune != 'a' {
		t.Errorf("Expected keystroke 'a', got %+v", ev)
	}
}

func TestSessionDecodeMultiplexed(t *testing.T) {
	src := newScriptedSource()
	sess := New(src)
	sess.Start()
	defer sess.Close()

	sess.PostDecode("result")
	ev, err := sess.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Kind != relay.KindDecode || ev.Decode != "result" {
		t.Errorf("Expected decode event, got %+v", ev)
	}
	// Queued decode event must not have triggered a source read
	if got := src.reads.Load(); got != 0 {
		t.Errorf("Expected zero reads, got %d", got)
	}
}

func TestRunChildSuspendsAroundChild(t *testing.T) {
	src := newScriptedSource()
	tty := &recordingTTY{}
	sess := New(src, WithSuspender(tty))
	sess.Start()
	defer sess.Close()

	// Settle the relay: one keystroke requested and answered, leaving the
	// worker parked exactly as after a real "open editor" keypress
	src.events <- keyEvent('e')
	if _, err := sess.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	if err := sess.RunChild(exec.Command("true")); err != nil {
		t.Fatalf("RunChild failed: %v", err)
	}

	if len(tty.calls) != 2 || tty.calls[0] != "suspend" || tty.calls[1] != "resume" {
		t.Errorf("Expected suspend then resume, got %v", tty.calls)
	}

	// The worker must not have read during the child's run
	if got := src.reads.Load(); got != 1 {
		t.Errorf("Expected exactly 1 read (the 'e' key), got %d", got)
	}
}

func TestRunChildRefusedWhileOutstanding(t *testing.T) {
	src := newScriptedSource()
	sess := New(src)
	sess.Start()
	defer sess.Close()

	// A decode event that arrives while the input request is pending leaves
	// Next with an unanswered request: exactly the state in which handing
	// the terminal away would race the worker for keystrokes
	go func() {
		time.Sleep(10 * time.Millisecond)
		sess.PostDecode("tick")
	}()
	ev, err := sess.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if ev.Kind != relay.KindDecode {
		t.Fatalf("Expected decode event, got %+v", ev)
	}

	if err := sess.RunChild(exec.Command("true")); !errors.Is(err, ErrInputOutstanding) {
		t.Errorf("Expected ErrInputOutstanding, got %v", err)
	}

	// Settle the outstanding request so Close is clean
	src.events <- keyEvent('x')
	if _, err := sess.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
}

func TestCloseIdempotent(t *testing.T) {
	src := newScriptedSource()
	sess := New(src)
	sess.Start()

	sess.Close()
	sess.Close()
}

func TestSourceFailureSurfaces(t *testing.T) {
	src := newScriptedSource()
	sess := New(src)
	sess.Start()

	go func() {
		time.Sleep(10 * time.Millisecond)
		src.Close() // input stream dies mid-read
	}()

	_, err := sess.Next()
	if !errors.Is(err, terminal.ErrSourceClosed) {
		t.Errorf("Expected source-closed error to surface, got %v", err)
	}
	sess.Close()
}
