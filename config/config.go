package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Superchig/keyrelay/preview"
	"github.com/Superchig/keyrelay/terminal"
)

// Rune aliases for keys that can't be bare single-char TOML keys
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
	"quote":     '"',
}

// file is the raw TOML shape: [keys] maps a key chord to an action name,
// [preview] bounds the decode worker
type file struct {
	Keys    map[string]string `toml:"keys"`
	Preview previewSection    `toml:"preview"`
}

type previewSection struct {
	Enabled   *bool `toml:"enabled"`
	MaxWidth  *int  `toml:"max_width"`
	MaxHeight *int  `toml:"max_height"`
}

// Keymap resolves parsed terminal events to actions
type Keymap struct {
	Runes    map[rune]Action
	Specials map[terminal.Key]Action
}

// Lookup returns the action bound to a key event, or ActionNone
func (m *Keymap) Lookup(ev terminal.Event) Action {
	if ev.Type != terminal.EventKey || ev.Modifiers&terminal.ModAlt != 0 {
		return ActionNone
	}
	if ev.Key == terminal.KeyRune {
		return m.Runes[ev.Rune]
	}
	return m.Specials[ev.Key]
}

// Config is the resolved application configuration
type Config struct {
	Keymap         Keymap
	PreviewEnabled bool
	Preview        preview.Config
}

// Default returns the compiled-in configuration
func Default() *Config {
	return &Config{
		Keymap: Keymap{
			Runes: map[rune]Action{
				'q': ActionQuit,
				'e': ActionEdit,
				'p': ActionPreview,
				'k': ActionUp,
				'j': ActionDown,
				'h': ActionLeft,
				'l': ActionRight,
				'g': ActionTop,
				'G': ActionBottom,
			},
			Specials: map[terminal.Key]Action{
				terminal.KeyUp:    ActionUp,
				terminal.KeyDown:  ActionDown,
				terminal.KeyLeft:  ActionLeft,
				terminal.KeyRight: ActionRight,
				terminal.KeyCtrlC: ActionQuit,
			},
		},
		PreviewEnabled: true,
		Preview:        preview.Config{MaxWidth: 160, MaxHeight: 96},
	}
}

// Load reads a TOML config file and applies it as a sparse override on the
// defaults: only sections and keys present in the file change anything, and
// binding a key to "none" deletes it.
func Load(path string) (*Config, error) {
	cfg := Default()

	var raw file
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}

	if err := applyKeys(&cfg.Keymap, raw.Keys); err != nil {
		return nil, err
	}
	applyPreview(cfg, raw.Preview)
	return cfg, nil
}

// Parse is Load for in-memory data, mostly for tests and embedded defaults
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var raw file
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config parse: %w", err)
	}

	if err := applyKeys(&cfg.Keymap, raw.Keys); err != nil {
		return nil, err
	}
	applyPreview(cfg, raw.Preview)
	return cfg, nil
}

func applyKeys(km *Keymap, keys map[string]string) error {
	for chord, actionName := range keys {
		action, ok := ActionByName(strings.ToLower(strings.TrimSpace(actionName)))
		if !ok {
			return fmt.Errorf("[keys] %q: unknown action %q", chord, actionName)
		}

		if r, ok := resolveRune(chord); ok {
			if action == ActionNone {
				delete(km.Runes, r)
			} else {
				km.Runes[r] = action
			}
			continue
		}

		k, ok := terminal.KeyByName(strings.ToLower(chord))
		if !ok {
			return fmt.Errorf("[keys] unknown key name: %q", chord)
		}
		if action == ActionNone {
			delete(km.Specials, k)
		} else {
			km.Specials[k] = action
		}
	}
	return nil
}

func applyPreview(cfg *Config, s previewSection) {
	if s.Enabled != nil {
		cfg.PreviewEnabled = *s.Enabled
	}
	if s.MaxWidth != nil {
		cfg.Preview.MaxWidth = *s.MaxWidth
	}
	if s.MaxHeight != nil {
		cfg.Preview.MaxHeight = *s.MaxHeight
	}
}

// resolveRune converts a TOML key string to a rune binding
// Accepts single characters and named aliases
func resolveRune(s string) (rune, bool) {
	if r, ok := runeAliases[strings.ToLower(s)]; ok {
		return r, true
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], true
	}
	return 0, false
}
