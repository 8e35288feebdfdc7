// Package canvas embeds a native GL surface into a UI host. Frames are
// captured into tiles on the rendering thread and blitted into a bitmap on
// the UI thread.
package canvas

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hubastard/glfx/engine/blit"
	"github.com/hubastard/glfx/engine/capture"
	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/geometry"
	"github.com/hubastard/glfx/engine/transfer"
)

var (
	ErrDisposed = errors.New("canvas: disposed")
	ErrStarted  = errors.New("canvas: already started")
)

type Phase int32

const (
	Constructed Phase = iota
	Initialized
	Disposed
)

func (p Phase) String() string {
	switch p {
	case Constructed:
		return "constructed"
	case Initialized:
		return "initialized"
	case Disposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Stats summarises the pipeline since construction.
type Stats struct {
	capture.Stats
	Blitted uint64
}

type Canvas struct {
	surface core.Surface
	host    core.Host
	opts    Options

	exchange   *transfer.Exchange
	reconciler *geometry.Reconciler
	capture    *capture.Stage
	blit       *blit.Stage

	phase    atomic.Int32
	disposed atomic.Bool
	started  atomic.Bool
	once     sync.Once

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	gctx   context.Context
}

// New wires a canvas between surface and host. render draws each frame and
// runs before the framebuffer is captured; it may be nil. Frames are shown
// on view. Nothing runs in the background until Start.
func New(surface core.Surface, host core.Host, view blit.View, render core.Listener, opts Options) *Canvas {
	opts.defaults()
	c := &Canvas{
		surface:  surface,
		host:     host,
		opts:     opts,
		exchange: transfer.NewExchange(opts.TileSize),
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.group, c.gctx = errgroup.WithContext(c.ctx)

	c.reconciler = geometry.NewReconciler(host, surface, geometry.Options{
		PollInterval:   opts.PollInterval,
		FallbackWidth:  opts.FallbackWidth,
		FallbackHeight: opts.FallbackHeight,
		Disposed:       c.disposed.Load,
	})
	c.capture = capture.NewStage(c.exchange, c.reconciler)
	c.blit = blit.NewStage(c.exchange, view)

	if render != nil {
		surface.AddListener(render)
	}
	surface.AddListener(&captureListener{c: c})
	if opts.Screens != nil {
		x, y := opts.Screens.MaxScreenPoint()
		surface.SetPosition(x+100, y+100)
	}
	surface.SetVisible(true)

	host.OnFrame(c.frame)
	return c
}

// Start blocks until the host is attached to a live window, then starts the
// redraw driver and the geometry reconciler. Cancelling ctx disposes the
// canvas.
func (c *Canvas) Start(ctx context.Context) error {
	if c.disposed.Load() {
		return ErrDisposed
	}
	if !c.started.CompareAndSwap(false, true) {
		return ErrStarted
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return ErrDisposed
	case <-c.host.Attached():
	}

	if !c.phase.CompareAndSwap(int32(Constructed), int32(Initialized)) {
		return ErrDisposed
	}
	if win := c.host.Window(); win != nil {
		win.OnCloseRequest(c.Dispose)
	}
	context.AfterFunc(ctx, c.Dispose)

	if c.opts.FPS > 0 {
		interval := c.opts.redrawInterval()
		c.group.Go(func() error { return c.driveRedraws(c.gctx, interval) })
	}
	c.group.Go(func() error { return c.reconciler.Run(c.gctx) })

	core.Logger().Info("canvas initialized", "fps", c.opts.FPS, "tile_size", c.opts.TileSize)
	return nil
}

// Dispose stops every background loop and destroys the native surface.
// Safe to call more than once and from any goroutine.
func (c *Canvas) Dispose() {
	c.once.Do(func() {
		c.disposed.Store(true)
		c.phase.Store(int32(Disposed))
		c.cancel()
		c.surface.Destroy()

		st := c.Stats()
		core.Logger().Info("canvas disposed",
			"captured", st.Captured, "dropped", st.Dropped, "blitted", st.Blitted)
	})
}

// Wait blocks until the background loops have exited.
func (c *Canvas) Wait() error { return c.group.Wait() }

func (c *Canvas) Phase() Phase { return Phase(c.phase.Load()) }

func (c *Canvas) Stats() Stats {
	return Stats{Stats: c.capture.Stats(), Blitted: c.blit.Blitted()}
}

// Geometry is the last host geometry seen by the reconciler.
func (c *Canvas) Geometry() geometry.Snapshot { return c.reconciler.Snapshot() }

func (c *Canvas) driveRedraws(ctx context.Context, interval time.Duration) error {
	t := time.NewTimer(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
		}
		if c.disposed.Load() {
			return nil
		}
		c.surface.Display()
		t.Reset(interval)
	}
}

// frame runs on the UI thread every tick.
func (c *Canvas) frame(time.Time) {
	if c.disposed.Load() {
		return
	}
	scale := 1.0
	if win := c.host.Window(); win != nil {
		scale = win.OutputScale()
	}
	c.blit.Blit(scale)
}

// captureListener runs on the rendering thread after the user's listener.
// The redraw that directly follows a reshape is skipped: the framebuffer
// may not have the new size yet.
type captureListener struct {
	c        *Canvas
	reshaped bool
}

func (l *captureListener) Init(core.Drawable) {}

func (l *captureListener) Dispose(core.Drawable) {}

func (l *captureListener) Reshape(core.Drawable, int, int, int, int) { l.reshaped = true }

func (l *captureListener) Display(d core.Drawable) {
	if l.reshaped {
		l.reshaped = false
		return
	}
	if l.c.disposed.Load() {
		return
	}
	l.c.capture.Capture(d)
}
