package main

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/gogpu/blur"
)

// screenDispatcher delivers blur callbacks on the UI event loop by posting
// them as interrupt events. A callback is dropped, with a warning, when the
// event queue is full.
type screenDispatcher struct {
	screen tcell.Screen
}

func (d screenDispatcher) Dispatch(fn func()) {
	if err := d.screen.PostEvent(tcell.NewEventInterrupt(fn)); err != nil {
		blur.Logger().Warn("blurview: blur result dropped", "error", err)
	}
}

// viewer shows a blurred image with half-block cells: the foreground colors
// the upper pixel, the background the lower one.
type viewer struct {
	screen   tcell.Screen
	engine   *blur.Engine
	source   *blur.PixelBuffer
	settings settings

	result  *blur.PixelBuffer
	pending *blur.Handle
	status  string
}

func newViewer(screen tcell.Screen, engine *blur.Engine, source *blur.PixelBuffer, s settings) *viewer {
	return &viewer{screen: screen, engine: engine, source: source, settings: s}
}

// request starts a blur with the current settings, cancelling the previous
// one if it has not completed.
func (v *viewer) request() {
	if v.pending != nil {
		v.pending.Cancel()
	}
	p, err := v.engine.NewProcessor(v.settings.config(screenDispatcher{screen: v.screen}))
	if err != nil {
		v.status = err.Error()
		return
	}
	h, err := p.AsyncBlur(context.Background(), v.source, blur.Callback{
		OnSuccess: func(out *blur.PixelBuffer) {
			v.result = out
			v.status = v.settings.String()
		},
		OnFailed: func(err error) {
			v.status = "blur failed: " + err.Error()
		},
	})
	if err != nil {
		v.status = err.Error()
		return
	}
	v.pending = h
	v.status = v.settings.String() + " ..."
}

// handle processes one event and reports whether the viewer should quit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventInterrupt:
		if fn, ok := ev.Data().(func()); ok {
			fn()
		}
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
			return true
		case ev.Rune() == '+' || ev.Rune() == '=':
			v.settings.radius++
			v.request()
		case ev.Rune() == '-':
			if v.settings.radius > 1 {
				v.settings.radius--
				v.request()
			}
		case ev.Rune() == 'm':
			v.settings.mode = (v.settings.mode + 1) % 3
			v.request()
		case ev.Rune() == 's':
			v.settings.scheme = (v.settings.scheme + 1) % 3
			v.request()
		}
	}
	return false
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	img := v.result
	if img == nil {
		img = v.source
	}
	if h > 1 && w > 0 {
		drawImage(v.screen, img, w, h-1)
	}
	status := fmt.Sprintf(" %s  [+/-] radius  [m] mode  [s] scheme  [q] quit", v.status)
	for x, r := range []rune(status) {
		if x >= w {
			break
		}
		v.screen.SetContent(x, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}

// drawImage fits img into cols x rows cells, two pixels per cell.
func drawImage(screen tcell.Screen, img *blur.PixelBuffer, cols, rows int) {
	pw, ph := cols, rows*2
	for cy := 0; cy < rows; cy++ {
		for cx := 0; cx < cols; cx++ {
			top := img.At(cx*img.Width()/pw, (cy*2)*img.Height()/ph)
			bottom := img.At(cx*img.Width()/pw, (cy*2+1)*img.Height()/ph)
			style := tcell.StyleDefault.Foreground(cellColor(top)).Background(cellColor(bottom))
			screen.SetContent(cx, cy, '▀', nil, style)
		}
	}
}

func cellColor(c uint32) tcell.Color {
	return tcell.NewRGBColor(int32(c>>16&0xff), int32(c>>8&0xff), int32(c&0xff))
}

func (v *viewer) run() {
	v.request()
	for {
		v.draw()
		if v.handle(v.screen.PollEvent()) {
			return
		}
	}
}
