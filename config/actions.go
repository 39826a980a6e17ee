package config

// Action is what a bound key asks the application to do
type Action uint8

const (
	ActionNone Action = iota // unbind sentinel

	// System
	ActionQuit
	ActionEdit // hand the terminal to the external editor

	// Preview
	ActionPreview

	// Navigation
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionTop
	ActionBottom
)

// actionRegistry maps canonical action names to actions
// Used by the keymap loader to resolve TOML action strings
var actionRegistry = map[string]Action{
	"none":    ActionNone,
	"quit":    ActionQuit,
	"edit":    ActionEdit,
	"preview": ActionPreview,
	"up":      ActionUp,
	"down":    ActionDown,
	"left":    ActionLeft,
	"right":   ActionRight,
	"top":     ActionTop,
	"bottom":  ActionBottom,
}

// ActionByName resolves a canonical action name
func ActionByName(name string) (Action, bool) {
	a, ok := actionRegistry[name]
	return a, ok
}
