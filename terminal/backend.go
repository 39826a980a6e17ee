package terminal

// Backend abstracts platform-specific terminal input plumbing. The package
// only mediates input; drawing is left to the caller (the tcell-backed
// source pairs naturally with tcell rendering).
type Backend interface {
	// Init puts the terminal into raw mode
	Init() error

	// Fini restores the terminal state captured by Init
	Fini()

	// Suspend temporarily restores cooked mode, e.g. while a child process
	// owns the terminal. Resume re-enters raw mode afterwards.
	Suspend() error
	Resume() error

	// Size returns the current terminal dimensions
	Size() (width, height int)

	// Read blocks until input bytes are available, the stop channel is
	// closed, or an error occurs. An empty slice with nil error signals a
	// poll timeout; nil slice with nil error signals stop or EOF.
	Read(stopCh <-chan struct{}) ([]byte, error)
}
