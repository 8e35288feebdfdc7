package geometry

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/glfx/engine/core/coretest"
)

func newAttached(w, h, scale float64) (*coretest.Host, *coretest.Window) {
	host := coretest.NewHost(w, h)
	win := coretest.NewWindow(scale)
	host.Attach(win)
	return host, win
}

func TestReconciler_FirstTickResizes(t *testing.T) {
	host, _ := newAttached(400, 300, 1)
	surface := coretest.NewSurface()
	r := NewReconciler(host, surface, Options{})

	assert.True(t, r.Tick())
	assert.Equal(t, [][2]int{{400, 300}}, surface.Sizes())
	assert.Equal(t, 1, surface.Displays())
	assert.Equal(t, Snapshot{Width: 400, Height: 300, Scale: 1}, r.Snapshot())

	assert.False(t, r.Tick(), "unchanged geometry is a no-op")
	assert.Len(t, surface.Sizes(), 1)
}

func TestReconciler_ScaleChangeDoublesPhysical(t *testing.T) {
	host, win := newAttached(400, 300, 1)
	surface := coretest.NewSurface()
	r := NewReconciler(host, surface, Options{})
	require.True(t, r.Tick())

	win.SetOutputScale(2)
	assert.True(t, r.Tick())
	assert.Equal(t, [2]int{800, 600}, surface.Sizes()[1])
	assert.Equal(t, 2, surface.Displays())
	assert.Equal(t, 2.0, r.Snapshot().Scale)
}

func TestReconciler_UnattachedHostUsesUnitScale(t *testing.T) {
	host := coretest.NewHost(400, 300)
	surface := coretest.NewSurface()
	r := NewReconciler(host, surface, Options{})

	assert.True(t, r.Tick())
	assert.Equal(t, [][2]int{{400, 300}}, surface.Sizes())
	assert.Equal(t, Snapshot{Width: 400, Height: 300, Scale: 1}, r.Snapshot())

	host.Attach(coretest.NewWindow(2))
	assert.True(t, r.Tick())
	assert.Equal(t, [2]int{800, 600}, surface.Sizes()[1])
}

func TestReconciler_SizeChange(t *testing.T) {
	host, _ := newAttached(400, 300, 1.5)
	surface := coretest.NewSurface()
	r := NewReconciler(host, surface, Options{})
	r.Tick()

	host.SetLogicalSize(401, 300)
	assert.True(t, r.Tick())
	assert.Equal(t, [2]int{601, 450}, surface.Sizes()[1])
}

func TestReconciler_FallbackForEmptyHost(t *testing.T) {
	host, _ := newAttached(0, 250, 2)
	surface := coretest.NewSurface()
	r := NewReconciler(host, surface, Options{})

	r.Tick()
	assert.Equal(t, [][2]int{{300, 500}}, surface.Sizes())

	surface2 := coretest.NewSurface()
	r2 := NewReconciler(host, surface2, Options{FallbackWidth: 64, FallbackHeight: 32})
	host.SetLogicalSize(-1, 0)
	r2.Tick()
	assert.Equal(t, [][2]int{{64, 32}}, surface2.Sizes())
	assert.Equal(t, Snapshot{Width: -1, Height: 0, Scale: 2}, r2.Snapshot())
}

func TestReconciler_NoNativeCallsAfterDispose(t *testing.T) {
	host, _ := newAttached(400, 300, 1)
	surface := coretest.NewSurface()
	var disposed atomic.Bool
	r := NewReconciler(host, surface, Options{Disposed: disposed.Load})

	disposed.Store(true)
	assert.False(t, r.Tick())
	assert.Empty(t, surface.Sizes())
	assert.Equal(t, 0, surface.Displays())
}

func TestReconciler_RunStopsOnDispose(t *testing.T) {
	host, _ := newAttached(400, 300, 1)
	surface := coretest.NewSurface()
	var disposed atomic.Bool
	r := NewReconciler(host, surface, Options{Disposed: disposed.Load})

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	require.Eventually(t, func() bool { return surface.Displays() == 1 }, time.Second, time.Millisecond)
	disposed.Store(true)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("reconciler did not observe the disposed flag")
	}
}

func TestReconciler_RunStopsOnCancel(t *testing.T) {
	host, _ := newAttached(10, 10, 1)
	r := NewReconciler(host, coretest.NewSurface(), Options{PollInterval: 5 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}

func TestSnapshot_Physical(t *testing.T) {
	s := Snapshot{Width: 100.7, Height: 50.2, Scale: 1.25}
	w, h := s.Physical()
	assert.Equal(t, 125, w)
	assert.Equal(t, 62, h)
	assert.False(t, s.Empty())
	assert.True(t, Snapshot{Width: 0, Height: 10, Scale: 1}.Empty())
}

func TestScreenSize(t *testing.T) {
	// Retina: 400x300 coordinates back an 800x600 framebuffer.
	w, h := ScreenSize(800, 600, [2]int{400, 300}, [2]int{800, 600})
	assert.Equal(t, [2]int{400, 300}, [2]int{w, h})

	// Coordinates are pixels.
	w, h = ScreenSize(801, 601, [2]int{300, 300}, [2]int{300, 300})
	assert.Equal(t, [2]int{801, 601}, [2]int{w, h})

	// Unknown ratio.
	w, h = ScreenSize(640, 480, [2]int{0, 0}, [2]int{0, 0})
	assert.Equal(t, [2]int{640, 480}, [2]int{w, h})

	// Fractional ratio rounds, never collapses to zero.
	w, h = ScreenSize(1, 601, [2]int{200, 200}, [2]int{300, 300})
	assert.Equal(t, [2]int{1, 401}, [2]int{w, h})
}
