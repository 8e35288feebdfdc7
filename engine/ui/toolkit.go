package ui

import (
	"context"
	"slices"
	"sync"
	"time"
)

// DefaultPulse is the UI tick rate.
const DefaultPulse = 60

// Toolkit owns the UI thread. Every tick it runs queued calls, the frame
// handlers of every shown window and then composites each window.
type Toolkit struct {
	interval time.Duration
	calls    chan func()

	mu      sync.Mutex
	windows []*Window
	ticks   uint64
}

func NewToolkit(pulse int) *Toolkit {
	if pulse <= 0 {
		pulse = DefaultPulse
	}
	return &Toolkit{
		interval: time.Second / time.Duration(pulse),
		calls:    make(chan func(), 64),
	}
}

// RunLater queues fn for the UI thread.
func (t *Toolkit) RunLater(fn func()) { t.calls <- fn }

// Show adds w to the set of ticked windows.
func (t *Toolkit) Show(w *Window) {
	w.mu.Lock()
	w.tk = t
	w.mu.Unlock()
	t.mu.Lock()
	t.windows = append(t.windows, w)
	t.mu.Unlock()
}

func (t *Toolkit) remove(w *Window) {
	t.mu.Lock()
	t.windows = slices.DeleteFunc(t.windows, func(x *Window) bool { return x == w })
	t.mu.Unlock()
}

// Windows returns the shown windows.
func (t *Toolkit) Windows() []*Window {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.windows)
}

// Run is the UI thread loop. It returns when ctx is done.
func (t *Toolkit) Run(ctx context.Context) error {
	tick := time.NewTicker(t.interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-t.calls:
			fn()
		case now := <-tick.C:
			t.Tick(now)
		}
	}
}

// Tick performs one UI frame. Only the UI thread may call it; Run does.
func (t *Toolkit) Tick(now time.Time) {
drain:
	for {
		select {
		case fn := <-t.calls:
			fn()
		default:
			break drain
		}
	}
	for _, w := range t.Windows() {
		w.pulse(now)
		w.composite()
	}
	t.mu.Lock()
	t.ticks++
	t.mu.Unlock()
}

// Ticks is the number of frames run so far.
func (t *Toolkit) Ticks() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ticks
}
