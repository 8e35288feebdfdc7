package geometry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hubastard/glfx/engine/core"
)

const (
	DefaultPollInterval = time.Millisecond
	DefaultFallback     = 300
)

type Options struct {
	PollInterval   time.Duration
	FallbackWidth  int // physical width used while the host has no width
	FallbackHeight int
	// Disposed is checked before every native call. Optional.
	Disposed func() bool
}

func (o *Options) defaults() {
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.FallbackWidth <= 0 {
		o.FallbackWidth = DefaultFallback
	}
	if o.FallbackHeight <= 0 {
		o.FallbackHeight = DefaultFallback
	}
	if o.Disposed == nil {
		o.Disposed = func() bool { return false }
	}
}

// Reconciler polls host geometry and resizes the native surface when the
// logical size or the output scale changes. The observed snapshot is owned
// by the polling goroutine; other goroutines read the published copy.
type Reconciler struct {
	host    core.Host
	surface core.Surface
	opts    Options

	last      Snapshot
	published atomic.Pointer[Snapshot]
}

func NewReconciler(host core.Host, surface core.Surface, opts Options) *Reconciler {
	opts.defaults()
	r := &Reconciler{host: host, surface: surface, opts: opts}
	r.published.Store(&Snapshot{})
	return r
}

// Snapshot returns the most recently published geometry.
func (r *Reconciler) Snapshot() Snapshot { return *r.published.Load() }

// Run polls until ctx is done or the disposed flag is observed.
func (r *Reconciler) Run(ctx context.Context) error {
	t := time.NewTicker(r.opts.PollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if r.opts.Disposed() {
				return nil
			}
			r.Tick()
		}
	}
}

// Tick performs one reconciliation and reports whether the surface was
// resized. Size and scale changes take the same path: resize, then a
// synchronous redraw so the next capture sees the new size.
func (r *Reconciler) Tick() bool {
	w, h := r.host.LogicalSize()
	scale := r.last.Scale
	if win := r.host.Window(); win != nil {
		scale = win.OutputScale()
	}
	if scale <= 0 {
		scale = 1
	}
	next := Snapshot{Width: w, Height: h, Scale: scale}
	if next == r.last {
		return false
	}
	r.last = next
	r.published.Store(&next)

	if r.opts.Disposed() {
		return false
	}
	pw, ph := next.PhysicalOr(r.opts.FallbackWidth, r.opts.FallbackHeight)
	core.Logger().Debug("geometry changed",
		"logical_w", w, "logical_h", h, "scale", scale,
		"physical_w", pw, "physical_h", ph)
	r.surface.SetSize(pw, ph)
	r.surface.Display()
	return true
}
