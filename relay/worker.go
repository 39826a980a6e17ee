package relay

import "fmt"

// Source is the blocking input source the worker reads from. ReadEvent
// blocks until one discrete input unit is available and returns exactly one
// unit per invocation. A returned error is fatal to the worker.
type Source[P any] interface {
	ReadEvent() (P, error)
}

// InputWorker relays input from a blocking source to the Coordinator,
// reading only when explicitly asked.
//
// Protocol:
//  1. Block on the request channel
//  2. On RequestInput: perform the blocking read (the only legitimate
//     long-blocking point), then send the payload tagged with the token
//  3. On Shutdown: exit cleanly
//
// The worker never reads speculatively. While no request is pending it is
// parked on the request channel, so input intended for a child process that
// owns the terminal (an external editor spawned by the application) can
// never be stolen and delivered later as phantom events.
type InputWorker[P any] struct {
	source   Source[P]
	requests <-chan InputRequest
	events   chan<- Event[P]
}

// NewInputWorker creates a worker reading from source. The channels come
// from the Coordinator that will drive it.
func NewInputWorker[P any](source Source[P], requests <-chan InputRequest, events chan<- Event[P]) *InputWorker[P] {
	return &InputWorker[P]{
		source:   source,
		requests: requests,
		events:   events,
	}
}

// Run executes the worker loop until Shutdown or failure. It returns nil
// after a clean Shutdown. A closed request channel or a source failure is
// fatal and returned; on source failure the final KindInputFailed event is
// sent first so the Coordinator does not hang waiting for an answer.
func (w *InputWorker[P]) Run() error {
	for {
		req, ok := <-w.requests
		if !ok {
			return ErrRequestChannelClosed
		}
		if req.Shutdown {
			return nil
		}

		payload, err := w.source.ReadEvent()
		if err != nil {
			w.events <- Event[P]{Kind: KindInputFailed, Token: req.Token, Err: err}
			return fmt.Errorf("input read: %w", err)
		}

		w.events <- Event[P]{Kind: KindInput, Token: req.Token, Input: payload}
	}
}
