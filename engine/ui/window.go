package ui

import (
	"image"
	"image/draw"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hubastard/glfx/engine/colors"
)

// Window is a top-level surface of the toolkit. Its frame is composited in
// physical pixels: logical size times output scale.
type Window struct {
	title string
	bg    colors.Color
	size  [2]float64
	scale atomic.Uint64

	root  Element
	frame *image.RGBA

	mu      sync.Mutex
	onClose []func()
	closed  bool
	tk      *Toolkit
}

func NewWindow(title string, w, h, scale float64) *Window {
	if scale <= 0 {
		scale = 1
	}
	win := &Window{title: title, size: [2]float64{w, h}, bg: colors.Black}
	win.scale.Store(math.Float64bits(scale))
	return win
}

func (w *Window) Title() string { return w.title }

// Background sets the clear color of the frame.
func (w *Window) Background(c colors.Color) *Window { w.bg = c; return w }

// OutputScale is safe for concurrent use.
func (w *Window) OutputScale() float64 { return math.Float64frombits(w.scale.Load()) }

// SetOutputScale simulates the window moving to a display of another
// density.
func (w *Window) SetOutputScale(s float64) {
	if s > 0 {
		w.scale.Store(math.Float64bits(s))
	}
}

// Resize sets the logical size. UI thread only.
func (w *Window) Resize(width, height float64) { w.size = [2]float64{width, height} }

func (w *Window) Size() (float64, float64) { return w.size[0], w.size[1] }

// SetRoot attaches root and its subtree to the window. Hosts inside the
// tree fire their attachment signal. UI thread only once shown.
func (w *Window) SetRoot(root Element) {
	w.root = root
	walk(root, func(e Element) {
		e.Node().mu.Lock()
		e.Node().window = w
		e.Node().mu.Unlock()
		if p, ok := e.(*Pane); ok {
			p.attach()
		}
	})
}

func (w *Window) OnCloseRequest(fn func()) {
	w.mu.Lock()
	w.onClose = append(w.onClose, fn)
	w.mu.Unlock()
}

// Close runs the close handlers once and removes the window from its
// toolkit.
func (w *Window) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	fns := append([]func(){}, w.onClose...)
	tk := w.tk
	w.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	if tk != nil {
		tk.remove(w)
	}
}

func (w *Window) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// Frame is the last composited frame. UI thread only.
func (w *Window) Frame() *image.RGBA { return w.frame }

// pulse runs the frame handlers of every element.
func (w *Window) pulse(now time.Time) {
	if w.root == nil {
		return
	}
	walk(w.root, func(e Element) {
		for _, fn := range e.Node().frameHandlers() {
			fn(now)
		}
	})
}

// composite lays the tree out and paints it.
func (w *Window) composite() {
	scale := w.OutputScale()
	pw := int(w.size[0] * scale)
	ph := int(w.size[1] * scale)
	if w.frame == nil || w.frame.Rect.Dx() != pw || w.frame.Rect.Dy() != ph {
		w.frame = image.NewRGBA(image.Rect(0, 0, pw, ph))
	}
	draw.Draw(w.frame, w.frame.Rect, image.NewUniform(w.bg.NRGBA()), image.Point{}, draw.Src)
	if w.root == nil {
		return
	}
	w.root.Node().SetPos(0, 0)
	w.root.Layout(w.size)
	w.root.Draw(w.frame, scale)
}
