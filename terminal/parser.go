// @focus: #terminal { parse }
package terminal

import "unicode/utf8"

// parser assembles raw terminal bytes into events. Incomplete escape
// sequences and split UTF-8 runes are carried across feeds in a persistent
// buffer; a standalone ESC is held back until flushEscape is called after
// the disambiguation window elapses.
type parser struct {
	buf []byte
}

// feed appends raw bytes and returns the events completely parsed so far
func (p *parser) feed(data []byte) []Event {
	p.buf = append(p.buf, data...)

	var out []Event
	consumed := 0
	for consumed < len(p.buf) {
		n, ev, emit := parseOne(p.buf[consumed:])
		if n == 0 {
			break // incomplete tail, wait for more bytes
		}
		consumed += n
		if emit {
			out = append(out, ev)
		}
	}

	if consumed > 0 {
		if consumed >= len(p.buf) {
			p.buf = p.buf[:0]
		} else {
			copy(p.buf, p.buf[consumed:])
			p.buf = p.buf[:len(p.buf)-consumed]
		}
	}
	return out
}

// flushEscape emits a pending standalone ESC. Called on read timeout to
// distinguish a lone Escape press from the start of an escape sequence.
func (p *parser) flushEscape() (Event, bool) {
	if len(p.buf) == 1 && p.buf[0] == 0x1b {
		p.buf = p.buf[:0]
		return Event{Type: EventKey, Key: KeyEscape}, true
	}
	return Event{}, false
}

// parseOne parses a single input unit from the head of data. It returns the
// bytes consumed (0 = incomplete, wait for more), the event, and whether the
// event should be emitted (swallowed unknown sequences consume without
// emitting).
func parseOne(data []byte) (int, Event, bool) {
	b := data[0]

	// Fast path: printable ASCII
	if b >= 0x20 && b < 0x7f {
		return 1, Event{Type: EventKey, Key: KeyRune, Rune: rune(b)}, true
	}

	if b == 0x1b {
		return parseEscape(data)
	}

	// Control characters
	if b < 0x20 {
		return 1, parseControl(b), true
	}

	// DEL
	if b == 0x7f {
		return 1, Event{Type: EventKey, Key: KeyBackspace}, true
	}

	// UTF-8 multibyte
	if !utf8.FullRune(data) {
		if len(data) >= utf8.UTFMax {
			return 1, Event{}, false // invalid start byte, skip
		}
		return 0, Event{}, false
	}
	r, size := utf8.DecodeRune(data)
	if r == utf8.RuneError && size == 1 {
		return 1, Event{}, false // invalid byte, skip
	}
	return size, Event{Type: EventKey, Key: KeyRune, Rune: r}, true
}

// parseEscape handles everything starting with ESC
func parseEscape(data []byte) (int, Event, bool) {
	if len(data) < 2 {
		return 0, Event{}, false // lone ESC, flushEscape decides later
	}

	switch {
	case data[1] == 0x1b:
		return 2, Event{Type: EventKey, Key: KeyEscape, Modifiers: ModAlt}, true
	case data[1] == '[':
		return parseCSI(data)
	case data[1] == 'O':
		return parseSS3(data)
	case data[1] < 0x20:
		ev := parseControl(data[1])
		ev.Modifiers |= ModAlt
		return 2, ev, true
	case data[1] >= 0x20 && data[1] < 0x7f:
		return 2, Event{Type: EventKey, Key: KeyRune, Rune: rune(data[1]), Modifiers: ModAlt}, true
	}

	// ESC followed by a non-ASCII byte: emit the Escape, reparse the rest
	return 1, Event{Type: EventKey, Key: KeyEscape}, true
}

// csiScanLimit bounds terminator scanning so garbage cannot stall parsing
const csiScanLimit = 16

// parseCSI parses a CSI sequence (ESC [ params terminator)
func parseCSI(data []byte) (int, Event, bool) {
	maxScan := len(data)
	if maxScan > csiScanLimit {
		maxScan = csiScanLimit
	}

	for end := 2; end < maxScan; end++ {
		b := data[end]
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			if key, mod, ok := lookupCSI(data[2 : end+1]); ok {
				return end + 1, Event{Type: EventKey, Key: key, Modifiers: mod}, true
			}
			// Unknown but well-formed sequence: swallow it
			return end + 1, Event{}, false
		}
		if b < 0x20 || b > 0x7e {
			// Malformed: drop the introducer, reparse from the bad byte
			return end, Event{}, false
		}
	}

	if len(data) >= csiScanLimit {
		// No terminator within the scan window: drop the introducer
		return 2, Event{}, false
	}
	return 0, Event{}, false // incomplete
}

// parseSS3 parses an SS3 sequence (ESC O x)
func parseSS3(data []byte) (int, Event, bool) {
	if len(data) < 3 {
		return 0, Event{}, false
	}
	if key, mod, ok := lookupSS3(data[2:3]); ok {
		return 3, Event{Type: EventKey, Key: key, Modifiers: mod}, true
	}
	// Unknown SS3: swallow to keep garbage off the stream
	return 3, Event{}, false
}

// parseControl maps a control byte to its key
func parseControl(b byte) Event {
	switch b {
	case 0x00:
		return Event{Type: EventKey, Key: KeyCtrlSpace}
	case 0x08:
		return Event{Type: EventKey, Key: KeyBackspace}
	case 0x09:
		return Event{Type: EventKey, Key: KeyTab}
	case 0x0a, 0x0d:
		return Event{Type: EventKey, Key: KeyEnter}
	case 0x1b:
		return Event{Type: EventKey, Key: KeyEscape}
	case 0x1c:
		return Event{Type: EventKey, Key: KeyCtrlBackslash}
	case 0x1d:
		return Event{Type: EventKey, Key: KeyCtrlBracketRight}
	case 0x1e:
		return Event{Type: EventKey, Key: KeyCtrlCaret}
	case 0x1f:
		return Event{Type: EventKey, Key: KeyCtrlUnderscore}
	}
	// 0x01-0x1a: Ctrl+A through Ctrl+Z, contiguous in the Key enum
	return Event{Type: EventKey, Key: KeyCtrlA + Key(b-0x01)}
}
