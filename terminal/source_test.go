package terminal

import (
	"errors"
	"testing"
	"time"
)

// fakeBackend replays scripted reads; an empty chunk models a poll timeout
type fakeBackend struct {
	chunks chan []byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{chunks: make(chan []byte, 16)}
}

func (b *fakeBackend) Init() error { return nil }
func (b *fakeBackend) Fini() {}
func (b *fakeBackend) Suspend() error { return nil }
func (b *fakeBackend) Resume() error { return nil }
func (b *fakeBackend) Size() (int, int) { return 80, 24 }

func (b *fakeBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	select {
	case c := <-b.chunks:
		return c, nil
	case <-stopCh:
		return nil, nil
	}
}

func TestSourceOneEventPerCall(t *testing.T) {
	b := newFakeBackend()
	s := NewSource(b)

	// One burst, three units: each ReadEvent returns exactly one
	b.chunks <- []byte("ab\x1b[A")

	want := []Event{
		{Type: EventKey, Key: KeyRune, Rune: 'a'},
		{Type: EventKey, Key: KeyRune, Rune: 'b'},
		{Type: EventKey, Key: KeyUp},
	}
	for i, w := range want {
		ev, err := s.ReadEvent()
		if err != nil {
			t.Fatalf("ReadEvent %d failed: %v", i, err)
		}
		if ev != w {
			t.Errorf("Event %d: expected %+v, got %+v", i, w, ev)
		}
	}
}

func TestSourceTimeoutFlushesEscape(t *testing.T) {
	b := newFakeBackend()
	s := NewSource(b)

	b.chunks <- []byte{0x1b}
	b.chunks <- []byte{} // poll timeout ends the disambiguation window

	ev, err := s.ReadEvent()
	if err != nil {
		t.Fatalf("ReadEvent failed: %v", err)
	}
	if ev.Key != KeyEscape {
		t.Errorf("Expected Escape after timeout, got %+v", ev)
	}
}

func TestSourceCloseUnblocksRead(t *testing.T) {
	b := newFakeBackend()
	s := NewSource(b)

	errCh := make(chan error, 1)
	go func() {
		_, err := s.ReadEvent()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	s.Close()

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrSourceClosed) {
			t.Errorf("Expected ErrSourceClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ReadEvent did not unblock on Close")
	}

	// Idempotent
	s.Close()
}
