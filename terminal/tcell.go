package terminal

import "github.com/gdamore/tcell/v2"

// TcellSource adapts a tcell.Screen to the relay's blocking source
// contract: PollEvent blocks and returns one discrete event per call.
// The screen must already be initialized; rendering stays with the caller.
type TcellSource struct {
	screen tcell.Screen
}

// NewTcellSource wraps an initialized screen
func NewTcellSource(screen tcell.Screen) *TcellSource {
	return &TcellSource{screen: screen}
}

// ReadEvent blocks on the screen's event stream and translates key and
// resize events. Other event kinds (paste, focus) are skipped.
func (s *TcellSource) ReadEvent() (Event, error) {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			// Screen finalized underneath us
			return Event{}, ErrSourceClosed
		}

		switch tev := ev.(type) {
		case *tcell.EventKey:
			return translateKey(tev), nil
		case *tcell.EventResize:
			w, h := tev.Size()
			return Event{Type: EventResize, Width: w, Height: h}, nil
		}
	}
}

// Close finalizes the screen, which unblocks a pending PollEvent
func (s *TcellSource) Close() {
	s.screen.Fini()
}

// tcellSpecials maps tcell named keys to package keys
var tcellSpecials = map[tcell.Key]Key{
	tcell.KeyEscape:     KeyEscape,
	tcell.KeyEnter:      KeyEnter,
	tcell.KeyTab:        KeyTab,
	tcell.KeyBacktab:    KeyBacktab,
	tcell.KeyBackspace:  KeyBackspace,
	tcell.KeyBackspace2: KeyBackspace, // DEL byte, what most terminals send for backspace
	tcell.KeyDelete:     KeyDelete,
	tcell.KeyUp:         KeyUp,
	tcell.KeyDown:       KeyDown,
	tcell.KeyLeft:       KeyLeft,
	tcell.KeyRight:      KeyRight,
	tcell.KeyHome:       KeyHome,
	tcell.KeyEnd:        KeyEnd,
	tcell.KeyPgUp:       KeyPageUp,
	tcell.KeyPgDn:       KeyPageDown,
	tcell.KeyInsert:     KeyInsert,
	tcell.KeyF1:         KeyF1,
	tcell.KeyF2:         KeyF2,
	tcell.KeyF3:         KeyF3,
	tcell.KeyF4:         KeyF4,
	tcell.KeyF5:         KeyF5,
	tcell.KeyF6:         KeyF6,
	tcell.KeyF7:         KeyF7,
	tcell.KeyF8:         KeyF8,
	tcell.KeyF9:         KeyF9,
	tcell.KeyF10:        KeyF10,
	tcell.KeyF11:        KeyF11,
	tcell.KeyF12:        KeyF12,
}

// translateKey converts a tcell key event
func translateKey(ev *tcell.EventKey) Event {
	out := Event{Type: EventKey}

	if ev.Modifiers()&tcell.ModShift != 0 {
		out.Modifiers |= ModShift
	}
	if ev.Modifiers()&tcell.ModAlt != 0 {
		out.Modifiers |= ModAlt
	}
	if ev.Modifiers()&tcell.ModCtrl != 0 {
		out.Modifiers |= ModCtrl
	}

	k := ev.Key()
	switch {
	case k == tcell.KeyRune:
		out.Key = KeyRune
		out.Rune = ev.Rune()
	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		// tcell overlaps some of these with Tab/Enter/Backspace; prefer the
		// named key when it has one
		if named, ok := tcellSpecials[k]; ok {
			out.Key = named
		} else {
			out.Key = KeyCtrlA + Key(k-tcell.KeyCtrlA)
		}
	case k == tcell.KeyCtrlSpace:
		out.Key = KeyCtrlSpace
	case k == tcell.KeyCtrlBackslash:
		out.Key = KeyCtrlBackslash
	case k == tcell.KeyCtrlRightSq:
		out.Key = KeyCtrlBracketRight
	case k == tcell.KeyCtrlCarat:
		out.Key = KeyCtrlCaret
	case k == tcell.KeyCtrlUnderscore:
		out.Key = KeyCtrlUnderscore
	default:
		if named, ok := tcellSpecials[k]; ok {
			out.Key = named
		} else {
			out.Key = KeyNone
		}
	}
	return out
}
