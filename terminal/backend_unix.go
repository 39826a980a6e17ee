//go:build unix

package terminal

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollTimeoutMs is the poll granularity; each timeout gives the source a
// chance to check the stop channel and flush a pending standalone ESC
const pollTimeoutMs = 50

type unixBackend struct {
	in      *os.File
	out     *os.File
	inFd    int
	outFd   int
	oldTerm *term.State
}

// NewBackend returns the platform backend reading from stdin
func NewBackend() Backend {
	return &unixBackend{
		in:    os.Stdin,
		out:   os.Stdout,
		inFd:  int(os.Stdin.Fd()),
		outFd: int(os.Stdout.Fd()),
	}
}

func (b *unixBackend) Init() error {
	if !term.IsTerminal(b.inFd) {
		return fmt.Errorf("stdin is not a terminal")
	}

	old, err := term.MakeRaw(b.inFd)
	if err != nil {
		return err
	}
	b.oldTerm = old
	return nil
}

func (b *unixBackend) Fini() {
	if b.oldTerm != nil {
		term.Restore(b.inFd, b.oldTerm)
		b.oldTerm = nil
	}
}

func (b *unixBackend) Suspend() error {
	if b.oldTerm == nil {
		return nil
	}
	return term.Restore(b.inFd, b.oldTerm)
}

func (b *unixBackend) Resume() error {
	if b.oldTerm == nil {
		return nil
	}
	_, err := term.MakeRaw(b.inFd)
	return err
}

func (b *unixBackend) Size() (int, int) {
	w, h, err := term.GetSize(b.outFd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// Read polls stdin with a timeout so the caller can observe stop requests
// and escape-disambiguation windows. One successful poll yields one read.
func (b *unixBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	buf := make([]byte, 256)

	select {
	case <-stopCh:
		return nil, nil
	default:
	}

	for {
		fds := []unix.PollFd{
			{Fd: int32(b.inFd), Events: unix.POLLIN},
		}

		n, err := unix.Poll(fds, pollTimeoutMs)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, err
		}
		if n == 0 {
			return []byte{}, nil // timeout
		}

		rn, err := unix.Read(b.inFd, buf)
		if err != nil {
			if err == unix.EINTR || err == unix.EAGAIN {
				continue
			}
			return nil, err
		}
		if rn == 0 {
			return nil, nil // EOF
		}

		out := make([]byte, rn)
		copy(out, buf[:rn])
		return out, nil
	}
}
