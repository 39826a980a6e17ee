package terminal

import (
	"errors"
	"fmt"
	"sync"
)

// ErrSourceClosed is returned by ReadEvent once the source is closed or the
// underlying input stream hits EOF. It is fatal to the input worker, like
// any other source error.
var ErrSourceClosed = errors.New("terminal: input source closed")

// Source turns a Backend into the blocking one-event-per-call contract the
// relay's input worker expects. It owns the byte parser and a small queue of
// already-parsed events, so a single read burst (paste, escape sequence
// batch) is delivered one unit per ReadEvent call.
//
// Thread-Safety: ReadEvent is called by the input worker goroutine only;
// Close may be called from any goroutine, once.
type Source struct {
	backend   Backend
	parser    parser
	queue     []Event
	stopCh    chan struct{}
	closeOnce sync.Once
}

// NewSource wraps an initialized backend
func NewSource(backend Backend) *Source {
	return &Source{
		backend: backend,
		stopCh:  make(chan struct{}),
	}
}

// ReadEvent blocks until one input event is available. It never reads the
// backend while parsed events are still queued.
func (s *Source) ReadEvent() (Event, error) {
	for {
		if len(s.queue) > 0 {
			ev := s.queue[0]
			s.queue = s.queue[1:]
			return ev, nil
		}

		data, err := s.backend.Read(s.stopCh)
		if err != nil {
			return Event{}, fmt.Errorf("terminal read: %w", err)
		}
		if data == nil {
			return Event{}, ErrSourceClosed
		}

		if len(data) == 0 {
			// Poll timeout: a held-back lone ESC is a real Escape press
			if ev, ok := s.parser.flushEscape(); ok {
				return ev, nil
			}
			select {
			case <-s.stopCh:
				return Event{}, ErrSourceClosed
			default:
				continue
			}
		}

		s.queue = append(s.queue, s.parser.feed(data)...)
	}
}

// Close unblocks a pending ReadEvent and makes all future reads fail with
// ErrSourceClosed. Safe to call while the worker is mid-read; that is how
// the process avoids hanging on a final keystroke at teardown. Idempotent.
func (s *Source) Close() {
	s.closeOnce.Do(func() {
		close(s.stopCh)
	})
}
