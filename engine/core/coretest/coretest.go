// Package coretest provides in-memory implementations of the core
// interfaces for tests.
package coretest

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hubastard/glfx/engine/core"
)

// Region is a recorded ReadRegion call.
type Region struct{ X, Y, W, H int }

// Framebuffer fills every pixel of a read with Fill(x, y) in all three
// channels and records the regions read.
type Framebuffer struct {
	mu      sync.Mutex
	W, H    int
	Fill    func(x, y int) byte
	regions []Region
}

func (f *Framebuffer) ReadRegion(x, y, w, h int, dst []byte) {
	f.mu.Lock()
	f.regions = append(f.regions, Region{x, y, w, h})
	fill := f.Fill
	f.mu.Unlock()
	if fill == nil {
		return
	}
	for row := 0; row < h; row++ {
		for col := 0; col < w; col++ {
			v := fill(x+col, y+row)
			i := (row*w + col) * 3
			dst[i], dst[i+1], dst[i+2] = v, v, v
		}
	}
}

func (f *Framebuffer) Size() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.W, f.H
}

// Regions returns the reads since the last Reset.
func (f *Framebuffer) Regions() []Region {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Region(nil), f.regions...)
}

func (f *Framebuffer) Reset() {
	f.mu.Lock()
	f.regions = nil
	f.mu.Unlock()
}

func (f *Framebuffer) resize(w, h int) {
	f.mu.Lock()
	f.W, f.H = w, h
	f.mu.Unlock()
}

// Surface runs listeners synchronously on the calling goroutine, serialised
// by a mutex the way a native surface serialises work on its thread. A
// Display following a size change first delivers Reshape.
type Surface struct {
	FB *Framebuffer

	mu        sync.Mutex
	listeners []core.Listener
	sizes     [][2]int
	pos       [2]int
	visible   bool
	reshape   bool
	destroyed bool
	displays  int
	redraws   atomic.Int64
	draw      sync.Mutex
}

func NewSurface() *Surface { return &Surface{FB: &Framebuffer{}} }

func (s *Surface) AddListener(l core.Listener) {
	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()
}

func (s *Surface) SetSize(w, h int) {
	s.mu.Lock()
	s.sizes = append(s.sizes, [2]int{w, h})
	cw, ch := s.FB.Size()
	if cw != w || ch != h {
		s.reshape = true
	}
	s.mu.Unlock()
	s.FB.resize(w, h)
}

func (s *Surface) SetPosition(x, y int) {
	s.mu.Lock()
	s.pos = [2]int{x, y}
	s.mu.Unlock()
}

func (s *Surface) SetVisible(v bool) {
	s.mu.Lock()
	s.visible = v
	s.mu.Unlock()
}

// RequestRedraw redraws synchronously.
func (s *Surface) RequestRedraw() {
	s.redraws.Add(1)
	s.Display()
}

func (s *Surface) Display() {
	s.draw.Lock()
	defer s.draw.Unlock()

	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	ls := append([]core.Listener(nil), s.listeners...)
	reshape := s.reshape
	s.reshape = false
	s.displays++
	s.mu.Unlock()

	if reshape {
		w, h := s.FB.Size()
		for _, l := range ls {
			l.Reshape(s.FB, 0, 0, w, h)
		}
	}
	for _, l := range ls {
		l.Display(s.FB)
	}
}

func (s *Surface) Destroy() {
	s.mu.Lock()
	if s.destroyed {
		s.mu.Unlock()
		return
	}
	s.destroyed = true
	ls := append([]core.Listener(nil), s.listeners...)
	s.mu.Unlock()
	for _, l := range ls {
		l.Dispose(s.FB)
	}
}

func (s *Surface) Sizes() [][2]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][2]int(nil), s.sizes...)
}

func (s *Surface) Position() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos[0], s.pos[1]
}

func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

func (s *Surface) Destroyed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

func (s *Surface) Displays() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displays
}

func (s *Surface) Redraws() int64 { return s.redraws.Load() }

// Window is a UI window with an adjustable output scale.
type Window struct {
	scale   atomic.Uint64
	mu      sync.Mutex
	onClose []func()
}

func NewWindow(scale float64) *Window {
	w := &Window{}
	w.SetOutputScale(scale)
	return w
}

func (w *Window) OutputScale() float64 { return math.Float64frombits(w.scale.Load()) }

func (w *Window) SetOutputScale(s float64) { w.scale.Store(math.Float64bits(s)) }

func (w *Window) OnCloseRequest(fn func()) {
	w.mu.Lock()
	w.onClose = append(w.onClose, fn)
	w.mu.Unlock()
}

// Close runs the close request handlers.
func (w *Window) Close() {
	w.mu.Lock()
	fns := append([]func(){}, w.onClose...)
	w.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Host is a hosting element whose frame ticks are driven by the test.
type Host struct {
	mu       sync.Mutex
	w, h     float64
	win      core.Window
	attached chan struct{}
	once     sync.Once
	frames   []func(time.Time)
}

func NewHost(w, h float64) *Host {
	return &Host{w: w, h: h, attached: make(chan struct{})}
}

func (h *Host) LogicalSize() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.w, h.h
}

func (h *Host) SetLogicalSize(w, ht float64) {
	h.mu.Lock()
	h.w, h.h = w, ht
	h.mu.Unlock()
}

func (h *Host) Attached() <-chan struct{} { return h.attached }

func (h *Host) Window() core.Window {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.win
}

// Attach binds the host to win and fires the attachment signal once.
func (h *Host) Attach(win core.Window) {
	h.mu.Lock()
	h.win = win
	h.mu.Unlock()
	h.once.Do(func() { close(h.attached) })
}

func (h *Host) OnFrame(fn func(time.Time)) {
	h.mu.Lock()
	h.frames = append(h.frames, fn)
	h.mu.Unlock()
}

// Frame runs one UI tick.
func (h *Host) Frame() {
	h.mu.Lock()
	fns := append([]func(time.Time){}, h.frames...)
	h.mu.Unlock()
	now := time.Now()
	for _, fn := range fns {
		fn(now)
	}
}

// Screens reports a fixed bottom-right corner.
type Screens struct{ X, Y int }

func (s Screens) MaxScreenPoint() (int, int) { return s.X, s.Y }
