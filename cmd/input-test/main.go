// Command input-test echoes mediated input events for manual protocol
// verification: keystrokes arrive only when requested, 'e' hands the
// terminal to $EDITOR, 'q' or Ctrl+C quits.
package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/Superchig/keyrelay/relay"
	"github.com/Superchig/keyrelay/session"
	"github.com/Superchig/keyrelay/terminal"
)

func main() {
	backend := terminal.NewBackend()
	if err := backend.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "init failed: %v\n", err)
		os.Exit(1)
	}
	defer backend.Fini()

	source := terminal.NewSource(backend)
	sess := session.New(source, session.WithSuspender(backend))
	sess.Start()
	defer sess.Close()

	fmt.Print("input-test: press keys ('e' = open $EDITOR, 'q' or Ctrl+C = quit)\r\n")

	for {
		ev, err := sess.Next()
		if err != nil {
			backend.Fini()
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
		if ev.Kind != relay.KindInput {
			continue
		}

		key := ev.Input
		switch {
		case key.Key == terminal.KeyRune && key.Rune == 'q', key.Key == terminal.KeyCtrlC:
			fmt.Print("bye\r\n")
			return
		case key.Key == terminal.KeyRune && key.Rune == 'e':
			if err := openEditor(sess); err != nil {
				fmt.Printf("editor: %v\r\n", err)
			}
		default:
			fmt.Printf("token=%d %s\r\n", ev.Token, describe(key))
		}
	}
}

// openEditor spawns $EDITOR on a scratch file while input is withheld
func openEditor(sess *session.Session) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	f, err := os.CreateTemp("", "input-test-*.txt")
	if err != nil {
		return err
	}
	f.Close()
	defer os.Remove(f.Name())

	return sess.RunChild(exec.Command(editor, f.Name()))
}

func describe(ev terminal.Event) string {
	var mods string
	if ev.Modifiers&terminal.ModCtrl != 0 {
		mods += "ctrl+"
	}
	if ev.Modifiers&terminal.ModAlt != 0 {
		mods += "alt+"
	}
	if ev.Modifiers&terminal.ModShift != 0 {
		mods += "shift+"
	}

	if ev.Key == terminal.KeyRune {
		return fmt.Sprintf("rune %s%q", mods, ev.Rune)
	}
	if name := terminal.KeyName(ev.Key); name != "" {
		return fmt.Sprintf("key %s%s", mods, name)
	}
	return fmt.Sprintf("key %s#%d", mods, ev.Key)
}
