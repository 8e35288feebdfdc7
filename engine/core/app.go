package core

import "time"

// Surface is the native window that owns the GL context. All methods are
// safe to call from any goroutine; GL work happens on the surface's own thread.
type Surface interface {
	AddListener(l Listener)
	SetSize(w, h int)
	SetPosition(x, y int)
	SetVisible(v bool)
	RequestRedraw()
	// Display redraws synchronously and returns once every listener ran.
	Display()
	Destroy()
}

// Listener receives callbacks on the rendering thread with the context current.
type Listener interface {
	Init(d Drawable)
	Reshape(d Drawable, x, y, w, h int)
	Display(d Drawable)
	Dispose(d Drawable)
}

// Framebuffer is the readback primitive used by the capture stage.
// ReadRegion fills dst with w*h RGB pixels of the given rectangle, rows
// top to bottom, origin at the top-left corner of the surface.
type Framebuffer interface {
	ReadRegion(x, y, w, h int, dst []byte)
}

// Drawable is the current rendering target handed to listeners.
type Drawable interface {
	Framebuffer
	Size() (w, h int)
}

// Host is the UI element the GL content is embedded into.
type Host interface {
	// LogicalSize is safe to call from any goroutine.
	LogicalSize() (w, h float64)
	// Attached is closed once the host belongs to a live window.
	Attached() <-chan struct{}
	// Window is nil until Attached is closed.
	Window() Window
	// OnFrame registers fn to run on the UI thread on every frame tick.
	OnFrame(fn func(now time.Time))
}

// Window is the live UI window a Host is attached to.
type Window interface {
	// OutputScale is safe to call from any goroutine.
	OutputScale() float64
	OnCloseRequest(fn func())
}

// Screens reports display geometry.
type Screens interface {
	// MaxScreenPoint is the bottom-right corner of the union of all screens.
	MaxScreenPoint() (x, y int)
}

// Event model for the native surface.
type Event interface{ isEvent() }

type EventCloseRequested struct{}

func (EventCloseRequested) isEvent() {}

type EventResize struct{ W, H int }

func (EventResize) isEvent() {}

type EventRedraw struct{}

func (EventRedraw) isEvent() {}

// Config for a native surface.
type Config struct {
	Title  string
	Width  int
	Height int
	VSync  bool
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	InitFunc    func(d Drawable)
	ReshapeFunc func(d Drawable, x, y, w, h int)
	DisplayFunc func(d Drawable)
	DisposeFunc func(d Drawable)
}

func (f ListenerFuncs) Init(d Drawable) {
	if f.InitFunc != nil {
		f.InitFunc(d)
	}
}

func (f ListenerFuncs) Reshape(d Drawable, x, y, w, h int) {
	if f.ReshapeFunc != nil {
		f.ReshapeFunc(d, x, y, w, h)
	}
}

func (f ListenerFuncs) Display(d Drawable) {
	if f.DisplayFunc != nil {
		f.DisplayFunc(d)
	}
}

func (f ListenerFuncs) Dispose(d Drawable) {
	if f.DisposeFunc != nil {
		f.DisposeFunc(d)
	}
}
