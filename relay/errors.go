package relay

import (
	"errors"
	"fmt"
)

// Channel failures are fatal: the relay has no notion of partial failure,
// only total failure of a channel link, which is unrecoverable by design.
var (
	// ErrRequestChannelClosed means the Coordinator side dropped the request
	// channel. The worker cannot recover; it has no other role.
	ErrRequestChannelClosed = errors.New("relay: request channel closed")

	// ErrEventChannelClosed means no producer remains on the event channel.
	ErrEventChannelClosed = errors.New("relay: event channel closed")
)

// ProtocolViolationError reports an input event tagged with a token the
// Coordinator is not waiting for. This cannot occur while the
// single-outstanding-request invariant holds, so it is treated as a
// programming-error-class fatal condition rather than silently recovered.
type ProtocolViolationError struct {
	Got  Token // token carried by the offending event
	Want Token // most recently issued token
}

func (e *ProtocolViolationError) Error() string {
	return fmt.Sprintf("relay: protocol violation: input event token %d, outstanding request token %d", e.Got, e.Want)
}
