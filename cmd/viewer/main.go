// Command viewer is a minimal image browser demonstrating the full relay
// stack on tcell: a file list, on-demand preview decoding on the decode
// worker, and synchronous $EDITOR handoff without stolen keystrokes.
//
// Usage: viewer [-config path] image...
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/Superchig/keyrelay/config"
	"github.com/Superchig/keyrelay/preview"
	"github.com/Superchig/keyrelay/relay"
	"github.com/Superchig/keyrelay/session"
	"github.com/Superchig/keyrelay/terminal"
)

const listWidth = 28

type viewer struct {
	screen   tcell.Screen
	sess     *session.Session
	decoder  *preview.Worker
	cfg      *config.Config
	files    []string
	selected int
	images   map[string]*preview.Result
	status   string
}

func main() {
	configPath := flag.String("config", "", "TOML config file")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: viewer [-config path] image...")
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("screen init: %v", err)
	}
	defer screen.Fini()

	source := terminal.NewTcellSource(screen)
	sess := session.New(source, session.WithSuspender(screen))
	sess.Start()
	defer sess.Close()

	v := &viewer{
		screen: screen,
		sess:   sess,
		cfg:    cfg,
		files:  flag.Args(),
		images: make(map[string]*preview.Result),
		status: "p: preview  e: edit  q: quit",
	}

	if cfg.PreviewEnabled {
		v.decoder = preview.NewWorker(sess)
		if err := v.decoder.Init(cfg.Preview); err != nil {
			log.Fatalf("preview: %v", err)
		}
		v.decoder.Start()
		defer v.decoder.Stop()
	}

	if err := v.run(); err != nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func (v *viewer) run() error {
	v.render()

	for {
		ev, err := v.sess.Next()
		if err != nil {
			return err
		}

		switch ev.Kind {
		case relay.KindInput:
			if ev.Input.Type == terminal.EventResize {
				v.screen.Sync()
				v.render()
				continue
			}
			if quit := v.handleKey(ev.Input); quit {
				return nil
			}
		case relay.KindDecode:
			res := ev.Decode.(*preview.Result)
			v.images[res.Path] = res
			if res.Err != nil {
				v.status = fmt.Sprintf("decode failed: %v", res.Err)
			} else {
				v.status = fmt.Sprintf("decoded %s", res.Path)
			}
		}
		v.render()
	}
}

func (v *viewer) handleKey(key terminal.Event) (quit bool) {
	switch v.cfg.Keymap.Lookup(key) {
	case config.ActionQuit:
		return true
	case config.ActionUp:
		if v.selected > 0 {
			v.selected--
		}
	case config.ActionDown:
		if v.selected < len(v.files)-1 {
			v.selected++
		}
	case config.ActionTop:
		v.selected = 0
	case config.ActionBottom:
		v.selected = len(v.files) - 1
	case config.ActionPreview:
		if v.decoder == nil {
			v.status = "preview disabled"
			break
		}
		v.status = fmt.Sprintf("decoding %s ...", v.files[v.selected])
		v.decoder.Request(v.files[v.selected])
	case config.ActionEdit:
		v.editSelected()
	}
	return false
}

// editSelected opens $EDITOR on the selected file. The relay guarantees the
// input worker is parked while the child owns the terminal.
func (v *viewer) editSelected() {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	if err := v.sess.RunChild(exec.Command(editor, v.files[v.selected])); err != nil {
		v.status = fmt.Sprintf("editor: %v", err)
		return
	}
	v.status = fmt.Sprintf("edited %s", v.files[v.selected])
	v.screen.Sync()
}

func (v *viewer) render() {
	v.screen.Clear()
	w, h := v.screen.Size()

	// File list
	base := tcell.StyleDefault
	sel := base.Reverse(true)
	for i, f := range v.files {
		if i >= h-1 {
			break
		}
		style := base
		if i == v.selected {
			style = sel
		}
		drawText(v.screen, 0, i, listWidth, style, runewidth.Truncate(f, listWidth, "…"))
	}

	// Preview pane
	if res, ok := v.images[v.files[v.selected]]; ok && res.Err == nil {
		drawImage(v.screen, listWidth+1, 0, w-listWidth-1, h-1, res)
	}

	// Status bar
	drawText(v.screen, 0, h-1, w, base.Reverse(true), runewidth.FillRight(runewidth.Truncate(v.status, w, "…"), w))

	v.screen.Show()
}

// drawText writes s starting at (x, y), clipped to width cells
func drawText(s tcell.Screen, x, y, width int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if col+rw > x+width {
			break
		}
		s.SetContent(col, y, r, nil, style)
		col += rw
	}
}

// drawImage paints the decoded image as background-colored cells
func drawImage(s tcell.Screen, x, y, w, h int, res *preview.Result) {
	b := res.Image.Bounds()
	iw, ih := b.Dx(), b.Dy()
	if iw == 0 || ih == 0 || w <= 0 || h <= 0 {
		return
	}

	cw, ch := iw, ih
	if cw > w {
		cw = w
	}
	if ch > h {
		ch = h
	}

	for cy := 0; cy < ch; cy++ {
		sy := b.Min.Y + cy*ih/ch
		for cx := 0; cx < cw; cx++ {
			sx := b.Min.X + cx*iw/cw
			r, g, bl, _ := res.Image.At(sx, sy).RGBA()
			color := tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(bl>>8))
			s.SetContent(x+cx, y+cy, ' ', nil, tcell.StyleDefault.Background(color))
		}
	}
}
