package terminal

import "io"

// EmergencyRestore writes the minimal reset needed to leave the user with a
// usable terminal after a crash: reset attributes, show the cursor, leave
// the alternate screen. Raw-mode restore is the backend's job; this is the
// last-resort path used by panic handlers that may not hold a backend.
func EmergencyRestore(w io.Writer) {
	w.Write([]byte("\x1b[0m\x1b[?25h\x1b[?1049l\r\n"))
}
