// Package relay implements request/acknowledge input mediation between a
// coordinating event loop and a dedicated input-reading goroutine.
//
// Three parties cooperate. The Coordinator owns all state and decides when
// input may be read. The InputWorker blocks on the raw input source, but
// only after receiving an explicit request. Decode collaborators (image
// preview decoding and the like) post opaque results onto the same event
// channel via PostDecode.
//
// Data flows through two one-directional channels: a many-producers/
// one-consumer event channel into the Coordinator, and a capacity-1 request
// channel out to the worker. Nothing polls; every wait is a blocking channel
// receive. Requests carry monotonically issued wrapping tokens, and at most
// one request is outstanding at any time, which is the property that keeps
// the worker idle (and the terminal untouched) whenever the application has
// handed the terminal to a child process such as an external editor.
package relay
