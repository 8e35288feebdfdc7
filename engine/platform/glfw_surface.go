package platform

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/geometry"
	"github.com/hubastard/glfx/engine/tile"
)

// pollInterval is how often OS events are pumped while idle.
const pollInterval = 4 * time.Millisecond

// Surface is a GLFW window with its own GL context, implementing
// core.Surface and core.Screens. GLFW and GL calls are queued to the thread
// running Run, which must be the goroutine that called NewSurface.
type Surface struct {
	w    *glfw.Window
	onEv func(core.Event)

	calls         chan func()
	done          chan struct{}
	closeOnce     sync.Once
	redrawPending atomic.Bool

	// render thread only
	listeners []core.Listener
	reshape   bool
	destroyed bool
	want      [2]int // framebuffer size last asked for by SetSize
}

// NewSurface creates the window hidden and makes its context current. The
// calling goroutine is locked to its OS thread and must then call Run.
func NewSurface(cfg core.Config, onEvent func(core.Event)) (*Surface, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	// GL 3.2+ core profile (Mac requires forward-compatible flag).
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 2)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Samples, 0)
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.FocusOnShow, glfw.False)
	// One framebuffer pixel per window coordinate where the platform allows it.
	glfw.WindowHint(glfw.CocoaRetinaFramebuffer, glfw.False)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	if err := gl.Init(); err != nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	core.Logger().Info("native surface created", "gl", gl.GoStr(gl.GetString(gl.VERSION)))

	s := &Surface{
		w:     win,
		onEv:  onEvent,
		calls: make(chan func(), 64),
		done:  make(chan struct{}),
	}
	win.SetCloseCallback(func(*glfw.Window) { s.emit(core.EventCloseRequested{}) })
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		s.reshape = true
		s.emit(core.EventResize{W: w, H: h})
	})
	win.SetRefreshCallback(func(*glfw.Window) { s.emit(core.EventRedraw{}) })
	return s, nil
}

func (s *Surface) emit(ev core.Event) {
	if s.onEv != nil {
		s.onEv(ev)
	}
}

// Run executes queued calls and pumps OS events until the surface is
// destroyed or ctx is done. A done ctx destroys the surface.
func (s *Surface) Run(ctx context.Context) error {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-s.done:
			return nil
		case <-ctx.Done():
			s.destroy()
			return nil
		case fn := <-s.calls:
			fn()
		case <-t.C:
			if !s.destroyed {
				glfw.PollEvents()
			}
		}
	}
}

// do runs fn on the render thread and waits for it. Calls made after the
// surface is destroyed return without running fn.
func (s *Surface) do(fn func()) {
	ran := make(chan struct{})
	select {
	case s.calls <- func() { defer close(ran); fn() }:
	case <-s.done:
		return
	}
	select {
	case <-ran:
	case <-s.done:
	}
}

func (s *Surface) AddListener(l core.Listener) {
	s.do(func() {
		if s.destroyed {
			return
		}
		s.listeners = append(s.listeners, l)
		l.Init(drawable{s.w})
	})
}

// SetSize resizes the framebuffer to w x h pixels. GLFW sizes windows in
// screen coordinates, so the request is converted with the window's current
// pixel ratio.
func (s *Surface) SetSize(w, h int) {
	s.do(func() {
		if s.destroyed {
			return
		}
		var win, fb [2]int
		win[0], win[1] = s.w.GetSize()
		fb[0], fb[1] = s.w.GetFramebufferSize()
		sw, sh := geometry.ScreenSize(w, h, win, fb)
		s.w.SetSize(sw, sh)
		s.want = [2]int{w, h}
		s.reshape = true
	})
}

func (s *Surface) SetPosition(x, y int) {
	s.do(func() {
		if !s.destroyed {
			s.w.SetPos(x, y)
		}
	})
}

func (s *Surface) SetVisible(v bool) {
	s.do(func() {
		switch {
		case s.destroyed:
		case v:
			s.w.Show()
		default:
			s.w.Hide()
		}
	})
}

// RequestRedraw queues a redraw unless one is already pending and returns
// without waiting. Expose events are only reported as core.EventRedraw;
// calling RequestRedraw from the event handler repaints them. The request
// is dropped when the call queue is full.
func (s *Surface) RequestRedraw() {
	if !s.redrawPending.CompareAndSwap(false, true) {
		return
	}
	select {
	case s.calls <- func() {
		s.redrawPending.Store(false)
		s.display()
	}:
	case <-s.done:
	default:
		s.redrawPending.Store(false)
	}
}

func (s *Surface) Display() { s.do(s.display) }

// MaxScreenPoint is the bottom-right corner of the union of all monitors.
func (s *Surface) MaxScreenPoint() (x, y int) {
	s.do(func() {
		for _, m := range glfw.GetMonitors() {
			mx, my := m.GetPos()
			vm := m.GetVideoMode()
			if vm == nil {
				continue
			}
			x = max(x, mx+vm.Width)
			y = max(y, my+vm.Height)
		}
	})
	return x, y
}

func (s *Surface) Destroy() { s.do(s.destroy) }

func (s *Surface) display() {
	if s.destroyed {
		return
	}
	d := drawable{s.w}
	if s.reshape {
		s.reshape = false
		w, h := s.w.GetFramebufferSize()
		if s.want != [2]int{} && s.want != [2]int{w, h} {
			core.Logger().Warn("framebuffer size differs from request",
				"want_w", s.want[0], "want_h", s.want[1], "got_w", w, "got_h", h)
		}
		gl.Viewport(0, 0, int32(w), int32(h))
		for _, l := range s.listeners {
			l.Reshape(d, 0, 0, w, h)
		}
	}
	for _, l := range s.listeners {
		l.Display(d)
	}
	s.w.SwapBuffers()
}

func (s *Surface) destroy() {
	if s.destroyed {
		return
	}
	d := drawable{s.w}
	for _, l := range s.listeners {
		l.Dispose(d)
	}
	s.destroyed = true
	s.listeners = nil
	s.w.Destroy()
	glfw.Terminate()
	s.closeOnce.Do(func() { close(s.done) })
	core.Logger().Info("native surface destroyed")
}

// drawable reads back the back buffer of the current context.
type drawable struct{ w *glfw.Window }

func (d drawable) Size() (int, int) { return d.w.GetFramebufferSize() }

// ReadRegion reads in GL coordinates (bottom-left origin) and flips the
// rows so dst is top-down.
func (d drawable) ReadRegion(x, y, w, h int, dst []byte) {
	n := w * h * tile.BytesPerPixel
	if w <= 0 || h <= 0 {
		return
	}
	if len(dst) < n {
		panic(fmt.Sprintf("platform: read %dx%d into %d bytes", w, h, len(dst)))
	}
	_, fbH := d.w.GetFramebufferSize()
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadBuffer(gl.BACK)
	gl.ReadPixels(int32(x), int32(fbH-y-h), int32(w), int32(h), gl.RGB, gl.UNSIGNED_BYTE, gl.Ptr(dst))
	tile.FlipRows(dst[:n], w*tile.BytesPerPixel)
}
