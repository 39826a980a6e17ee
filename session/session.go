package session

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime/debug"
	"sync"
	"time"

	"github.com/Superchig/keyrelay/relay"
	"github.com/Superchig/keyrelay/terminal"
)

// ErrInputOutstanding means RunChild was called while an input request was
// unanswered. The worker could be mid-read and steal keystrokes from the
// child; callers must finish handling the triggering event first, at which
// point the request is acknowledged and the worker is parked.
var ErrInputOutstanding = errors.New("session: input request outstanding")

// workerExitTimeout bounds the wait for the input worker during Close.
// A worker stuck on a final blocking read exits once the input stream is
// closed at process teardown; there is no reason to hold Close hostage.
const workerExitTimeout = 100 * time.Millisecond

// Source is the input source contract the session relays from
type Source = relay.Source[terminal.Event]

// Suspender temporarily hands the terminal over to a child process.
// terminal.Backend and tcell.Screen both satisfy it.
type Suspender interface {
	Suspend() error
	Resume() error
}

// closer is implemented by sources that can unblock a pending read
type closer interface {
	Close()
}

// Session wires a Coordinator and an InputWorker around a source and owns
// their lifecycle. All methods except PostDecode belong to the coordinating
// goroutine.
type Session struct {
	coord  *relay.Coordinator[terminal.Event]
	worker *relay.InputWorker[terminal.Event]
	source Source
	tty    Suspender

	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// Option configures a Session
type Option func(*Session)

// WithSuspender enables RunChild terminal handoff
func WithSuspender(tty Suspender) Option {
	return func(s *Session) {
		s.tty = tty
	}
}

// New creates a session relaying from source
func New(source Source, opts ...Option) *Session {
	coord := relay.NewCoordinator[terminal.Event]()
	s := &Session{
		coord:  coord,
		worker: coord.Worker(source),
		source: source,
		doneCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the input worker goroutine. The worker's loop ends either
// cleanly on Shutdown or fatally; fatal ends already surface through the
// event channel, so the goroutine itself only guards against panics.
func (s *Session) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		defer close(s.doneCh)
		defer func() {
			if r := recover(); r != nil {
				terminal.EmergencyRestore(os.Stdout)
				fmt.Fprintf(os.Stderr, "\r\n\x1b[31mINPUT WORKER CRASHED: %v\x1b[0m\r\n", r)
				fmt.Fprintf(os.Stderr, "Stack Trace:\r\n%s\r\n", debug.Stack())
				os.Exit(1)
			}
		}()
		s.worker.Run()
	}()
}

// Next returns the next event, issuing an input request first when none is
// outstanding. Errors are fatal to the session (see relay error taxonomy).
func (s *Session) Next() (relay.Event[terminal.Event], error) {
	return s.coord.Next()
}

// PostDecode implements preview.Sink: decode collaborators deliver results
// through the session's event channel. Safe from any goroutine.
func (s *Session) PostDecode(payload any) {
	s.coord.PostDecode(payload)
}

// RunChild hands the terminal to cmd and blocks until it exits. Requests
// are withheld for the duration, so the input worker stays parked on the
// request channel and cannot steal keystrokes meant for the child.
// Unset stdio streams are inherited from the process.
func (s *Session) RunChild(cmd *exec.Cmd) error {
	if s.coord.Outstanding() {
		return ErrInputOutstanding
	}

	if cmd.Stdin == nil {
		cmd.Stdin = os.Stdin
	}
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	if s.tty != nil {
		if err := s.tty.Suspend(); err != nil {
			return fmt.Errorf("suspend terminal: %w", err)
		}
	}

	runErr := cmd.Run()

	if s.tty != nil {
		if err := s.tty.Resume(); err != nil {
			return fmt.Errorf("resume terminal: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("child process: %w", runErr)
	}
	return nil
}

// Close shuts the worker down: deliver Shutdown if possible, unblock any
// pending read by closing the source, then wait briefly for the goroutine.
// Idempotent; no further events must be expected afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.coord.ShutdownInput()
	if c, ok := s.source.(closer); ok {
		c.Close()
	}

	select {
	case <-s.doneCh:
	case <-time.After(workerExitTimeout):
		// Worker stuck on a blocking read, proceed anyway
	}
}
