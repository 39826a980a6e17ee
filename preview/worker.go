// @focus: #preview { decode }
package preview

import (
	"fmt"
	"image"
	"os"
	"sync"

	// Codecs recognized by image.Decode
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Sink receives finished decode results. The relay Coordinator's PostDecode
// satisfies it; results travel the same multiplexed event channel as input.
type Sink interface {
	PostDecode(payload any)
}

// Result is one finished decode job. Err is set instead of Image when the
// file could not be opened or decoded; a failed preview is not fatal to the
// application, unlike input failures.
type Result struct {
	Path  string
	Image image.Image
	Err   error
}

// Config bounds decoded previews. Zero values mean no downsampling.
type Config struct {
	MaxWidth  int
	MaxHeight int
}

// Worker decodes image previews off the coordinating goroutine and posts
// results asynchronously.
//
// Thread-Safety:
//   - Request: any goroutine, non-blocking, drops when the queue is full
//   - decodeLoop: single goroutine owned by the worker
type Worker struct {
	sink    Sink
	cfg     Config
	jobs    chan string
	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWorker creates a decode worker posting into sink
func NewWorker(sink Sink) *Worker {
	return &Worker{
		sink:   sink,
		jobs:   make(chan string, 16),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Name implements Service
func (w *Worker) Name() string {
	return "preview"
}

// Dependencies implements Service
func (w *Worker) Dependencies() []string {
	return nil
}

// Init implements Service
// args[0]: Config (optional)
func (w *Worker) Init(args ...any) error {
	if len(args) > 0 {
		cfg, ok := args[0].(Config)
		if !ok {
			return fmt.Errorf("preview init: expected Config, got %T", args[0])
		}
		w.cfg = cfg
	}
	return nil
}

// Start implements Service - launches the decode goroutine
func (w *Worker) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	go w.decodeLoop()
	return nil
}

// Stop implements Service - signals stop and waits for the loop to drain
func (w *Worker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	return nil
}

// Request enqueues a decode job. Non-blocking: when the queue is full the
// job is dropped, since a newer preview request supersedes a stale backlog.
func (w *Worker) Request(path string) {
	select {
	case w.jobs <- path:
	default:
	}
}

// decodeLoop drains jobs until stopped
func (w *Worker) decodeLoop() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return
		case path := <-w.jobs:
			res := w.decode(path)
			w.sink.PostDecode(res)
		}
	}
}

// decode runs one job
func (w *Worker) decode(path string) *Result {
	f, err := os.Open(path)
	if err != nil {
		return &Result{Path: path, Err: fmt.Errorf("preview open: %w", err)}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return &Result{Path: path, Err: fmt.Errorf("preview decode %s: %w", path, err)}
	}

	if w.cfg.MaxWidth > 0 || w.cfg.MaxHeight > 0 {
		img = downsample(img, w.cfg.MaxWidth, w.cfg.MaxHeight)
	}
	return &Result{Path: path, Image: img}
}

// downsample shrinks img to fit within maxW x maxH using nearest-neighbour
// sampling. Cell-sized terminal previews don't warrant better filtering.
func downsample(img image.Image, maxW, maxH int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return img
	}

	scale := 1.0
	if maxW > 0 && w > maxW {
		scale = float64(maxW) / float64(w)
	}
	if maxH > 0 && h > maxH {
		if s := float64(maxH) / float64(h); s < scale {
			scale = s
		}
	}
	if scale >= 1.0 {
		return img
	}

	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := 0; y < dh; y++ {
		sy := b.Min.Y + y*h/dh
		for x := 0; x < dw; x++ {
			sx := b.Min.X + x*w/dw
			dst.Set(x, y, img.At(sx, sy))
		}
	}
	return dst
}
