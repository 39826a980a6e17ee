package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// collectSink gathers posted results
type collectSink struct {
	results chan *Result
}

func newCollectSink() *collectSink {
	return &collectSink{results: make(chan *Result, 8)}
}

func (s *collectSink) PostDecode(payload any) {
	s.results <- payload.(*Result)
}

// writeTestPNG writes a w x h solid image and returns its path
func writeTestPNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}

	path := filepath.Join(t.TempDir(), "test.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func startWorker(t *testing.T, sink Sink, cfg Config) *Worker {
	t.Helper()
	w := NewWorker(sink)
	if err := w.Init(cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(func() { w.Stop() })
	return w
}

func waitResult(t *testing.T, sink *collectSink) *Result {
	t.Helper()
	select {
	case res := <-sink.results:
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for decode result")
		return nil
	}
}

func TestDecodePNG(t *testing.T) {
	path := writeTestPNG(t, 8, 6)
	sink := newCollectSink()
	w := startWorker(t, sink, Config{})

	w.Request(path)
	res := waitResult(t, sink)

	if res.Err != nil {
		t.Fatalf("Expected successful decode, got %v", res.Err)
	}
	if res.Path != path {
		t.Errorf("Expected path %s, got %s", path, res.Path)
	}
	b := res.Image.Bounds()
	if b.Dx() != 8 || b.Dy() != 6 {
		t.Errorf("Expected 8x6 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDecodeMissingFile(t *testing.T) {
	sink := newCollectSink()
	w := startWorker(t, sink, Config{})

	w.Request(filepath.Join(t.TempDir(), "nope.png"))
	res := waitResult(t, sink)

	if res.Err == nil {
		t.Error("Expected error for missing file")
	}
	if res.Image != nil {
		t.Error("Expected nil image on failure")
	}
}

func TestDecodeDownsamples(t *testing.T) {
	path := writeTestPNG(t, 40, 20)
	sink := newCollectSink()
	w := startWorker(t, sink, Config{MaxWidth: 10, MaxHeight: 10})

	w.Request(path)
	res := waitResult(t, sink)

	if res.Err != nil {
		t.Fatalf("Expected successful decode, got %v", res.Err)
	}
	b := res.Image.Bounds()
	if b.Dx() > 10 || b.Dy() > 10 {
		t.Errorf("Expected image within 10x10, got %dx%d", b.Dx(), b.Dy())
	}
	// Aspect ratio preserved: 40x20 within 10x10 is 10x5
	if b.Dx() != 10 || b.Dy() != 5 {
		t.Errorf("Expected 10x5, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestStopIdempotent(t *testing.T) {
	w := NewWorker(newCollectSink())
	if err := w.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("First Stop failed: %v", err)
	}
	if err := w.Stop(); err != nil {
		t.Errorf("Second Stop failed: %v", err)
	}
}
