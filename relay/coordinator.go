package relay

import (
	"fmt"
	"time"
)

const (
	// eventBuffer sizes the multi-producer event channel. Producers are the
	// input worker (at most one pending answer by protocol) and decode
	// collaborators; the buffer keeps decode posts from blocking their
	// goroutines while the Coordinator is busy dispatching.
	eventBuffer = 64

	// shutdownSendTimeout bounds the Shutdown send. The capacity-1 request
	// slot can be momentarily full right as the worker picks up a request;
	// if nothing drains it the worker is already dead and the send is moot.
	shutdownSendTimeout = 100 * time.Millisecond
)

// Coordinator owns the request/answer bookkeeping of the input relay. It is
// the single consumer of the event channel and the single producer on the
// request channel.
//
// Thread-Safety:
//   - Next, ShutdownInput, Outstanding: Coordinator goroutine only
//   - PostDecode: safe from any goroutine (channel send only)
//   - sent/answered are owned exclusively by the Coordinator goroutine;
//     no other goroutine reads or writes them, so no locks are needed
type Coordinator[P any] struct {
	events   chan Event[P]
	requests chan InputRequest

	// sent is the token of the most recently issued request, answered the
	// token most recently acknowledged. sent == answered means idle (no
	// outstanding request); they are never compared for order.
	sent     Token
	answered Token
}

// NewCoordinator creates a coordinator with its channels. Wire a worker to
// the other ends with Worker.
func NewCoordinator[P any]() *Coordinator[P] {
	return &Coordinator[P]{
		events:   make(chan Event[P], eventBuffer),
		requests: make(chan InputRequest, 1),
	}
}

// Worker builds the InputWorker bound to this coordinator's channels.
// The caller runs it on its own goroutine.
func (c *Coordinator[P]) Worker(source Source[P]) *InputWorker[P] {
	return NewInputWorker(source, c.requests, c.events)
}

// Outstanding reports whether a request has been sent and not yet answered.
// While false, the worker is parked on the request channel and is guaranteed
// not to touch the input source.
func (c *Coordinator[P]) Outstanding() bool {
	return c.sent != c.answered
}

// Next runs one iteration of the mediation loop and returns the next event:
//
//  1. A non-blocking poll of the event channel; an already-queued event is
//     returned without touching the request counters, since it never
//     requires a new request
//  2. If idle, advance the token (wrapping past the maximum) and issue
//     exactly one RequestInput; if a request is already outstanding, issue
//     nothing, keeping in-flight requests bounded to 0 or 1
//  3. A blocking receive for the next event from either producer
//
// Events are returned strictly in channel receive order. Input events update
// the answered token before being returned; decode events pass through
// without touching the counters.
func (c *Coordinator[P]) Next() (Event[P], error) {
	select {
	case ev, ok := <-c.events:
		return c.accept(ev, ok)
	default:
	}

	if c.sent == c.answered {
		c.sent = c.sent.next()
		// Capacity-1 slot is free whenever no request is outstanding
		c.requests <- InputRequest{Token: c.sent}
	}

	ev, ok := <-c.events
	return c.accept(ev, ok)
}

// accept reconciles a received event against the outstanding request.
func (c *Coordinator[P]) accept(ev Event[P], ok bool) (Event[P], error) {
	if !ok {
		return Event[P]{}, ErrEventChannelClosed
	}

	switch ev.Kind {
	case KindInput:
		// Stale or never-issued tokens cannot occur by construction; if one
		// shows up the single-outstanding-request invariant was broken
		if c.sent == c.answered || ev.Token != c.sent {
			return ev, &ProtocolViolationError{Got: ev.Token, Want: c.sent}
		}
		c.answered = ev.Token
		return ev, nil

	case KindInputFailed:
		// Keep the counters consistent even though the session is over
		c.answered = ev.Token
		return ev, fmt.Errorf("input worker: %w", ev.Err)

	default: // KindDecode
		return ev, nil
	}
}

// PostDecode places a decode result on the event channel. Safe to call from
// the decode worker's goroutine; the payload is opaque to the relay.
func (c *Coordinator[P]) PostDecode(payload any) {
	c.events <- Event[P]{Kind: KindDecode, Decode: payload}
}

// ShutdownInput asks the worker to exit. After calling it the caller must
// not expect any further input event; a worker blocked mid-read exits once
// the underlying input stream is closed at teardown. Returns false if the
// request could not be delivered within the timeout, which means the worker
// is already gone.
func (c *Coordinator[P]) ShutdownInput() bool {
	select {
	case c.requests <- InputRequest{Shutdown: true}:
		return true
	case <-time.After(shutdownSendTimeout):
		return false
	}
}
