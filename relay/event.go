// @focus: #relay { messages }
package relay

// InputRequest is sent Coordinator -> InputWorker on the request channel.
// The channel has capacity 1; at most one request is in flight at a time.
type InputRequest struct {
	// Token tags the requested read; the answering event carries it back
	Token Token

	// Shutdown asks the worker to exit its loop without reading input
	Shutdown bool
}

// EventKind distinguishes the variants multiplexed on the event channel
type EventKind uint8

const (
	// KindInput is one unit of user input answering a RequestInput
	// Producer: InputWorker | Carries: Token, Input
	KindInput EventKind = iota

	// KindDecode is a result from the decode worker, opaque to the relay
	// Producer: any collaborator via Coordinator.PostDecode | Carries: Decode
	KindDecode

	// KindInputFailed reports a fatal input source failure
	// Producer: InputWorker, final event before it exits | Carries: Token, Err
	KindInputFailed
)

// Event is a single message on the many-producers/one-consumer event
// channel. P is the input payload type (a keystroke, a parsed terminal
// event); the relay never inspects it.
type Event[P any] struct {
	Kind   EventKind
	Token  Token // KindInput, KindInputFailed: token of the answered request
	Input  P     // KindInput payload
	Decode any   // KindDecode payload
	Err    error // KindInputFailed: the source failure
}
