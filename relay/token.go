package relay

// Token pairs an input request with the event that eventually answers it.
// Tokens are compared for equality only, never ordered: because at most one
// request is outstanding at any time, recency is the only property needed,
// which makes wraparound safe.
type Token uint32

// next returns the token following t, wrapping to zero past the maximum
// representable value. Unsigned wraparound is well-defined in Go, so this
// never traps; the invariant that no two outstanding requests share a token
// holds because only one request is ever outstanding.
func (t Token) next() Token {
	return t + 1
}
