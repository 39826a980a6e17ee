package terminal

// keyNames maps canonical lowercase names to keys, for keymap config files
// and event display. KeyRune is intentionally absent; printable characters
// are written literally in config.
var keyNames = map[string]Key{
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"enter":     KeyEnter,
	"tab":       KeyTab,
	"backtab":   KeyBacktab,
	"backspace": KeyBackspace,
	"delete":    KeyDelete,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pgup":      KeyPageUp,
	"pgdn":      KeyPageDown,
	"insert":    KeyInsert,
	"f1":        KeyF1,
	"f2":        KeyF2,
	"f3":        KeyF3,
	"f4":        KeyF4,
	"f5":        KeyF5,
	"f6":        KeyF6,
	"f7":        KeyF7,
	"f8":        KeyF8,
	"f9":        KeyF9,
	"f10":       KeyF10,
	"f11":       KeyF11,
	"f12":       KeyF12,
	"ctrl+c":    KeyCtrlC,
	"ctrl+d":    KeyCtrlD,
	"ctrl+l":    KeyCtrlL,
	"ctrl+r":    KeyCtrlR,
	"ctrl+u":    KeyCtrlU,
	"ctrl+z":    KeyCtrlZ,
}

// nameByKey is the reverse lookup, preferring the first registration order
// of the canonical table
var nameByKey map[Key]string

func init() {
	nameByKey = make(map[Key]string, len(keyNames))
	// Deterministic: canonical names win over aliases
	canonical := []string{
		"escape", "enter", "tab", "backtab", "backspace", "delete",
		"up", "down", "left", "right", "home", "end", "pgup", "pgdn", "insert",
		"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
		"ctrl+c", "ctrl+d", "ctrl+l", "ctrl+r", "ctrl+u", "ctrl+z",
	}
	for _, name := range canonical {
		nameByKey[keyNames[name]] = name
	}
}

// KeyByName resolves a canonical key name (lowercase)
func KeyByName(name string) (Key, bool) {
	k, ok := keyNames[name]
	return k, ok
}

// KeyName returns the canonical name of a key, or "" if it has none
func KeyName(k Key) string {
	return nameByKey[k]
}
