package canvas

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/core/coretest"
)

type view struct {
	mu   sync.Mutex
	img  image.Image
	w, h float64
}

func (v *view) SetImage(img image.Image, w, h float64) {
	v.mu.Lock()
	v.img, v.w, v.h = img, w, h
	v.mu.Unlock()
}

func (v *view) bounds() image.Rectangle {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.img == nil {
		return image.Rectangle{}
	}
	return v.img.Bounds()
}

type fixture struct {
	surface *coretest.Surface
	host    *coretest.Host
	win     *coretest.Window
	view    *view
	renders int
	canvas  *Canvas
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		surface: coretest.NewSurface(),
		host:    coretest.NewHost(800, 600),
		win:     coretest.NewWindow(1),
		view:    &view{},
	}
	render := core.ListenerFuncs{DisplayFunc: func(core.Drawable) { f.renders++ }}
	f.canvas = New(f.surface, f.host, f.view, render, opts)
	t.Cleanup(f.canvas.Dispose)
	return f
}

func fastOptions() Options {
	o := DefaultOptions()
	o.PollInterval = time.Millisecond
	return o
}

func TestNew_PlacesSurfaceOffscreen(t *testing.T) {
	opts := fastOptions()
	opts.Screens = coretest.Screens{X: 1920, Y: 1080}
	f := newFixture(t, opts)

	x, y := f.surface.Position()
	assert.Equal(t, 2020, x)
	assert.Equal(t, 1180, y)
	assert.True(t, f.surface.Visible())
	assert.Equal(t, Constructed, f.canvas.Phase())
}

func TestStart_WaitsForAttachment(t *testing.T) {
	f := newFixture(t, fastOptions())

	started := make(chan error, 1)
	go func() { started <- f.canvas.Start(context.Background()) }()

	select {
	case <-started:
		t.Fatal("Start returned before the host was attached")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, Constructed, f.canvas.Phase())
	assert.Empty(t, f.surface.Sizes(), "no reconciliation before attachment")

	f.host.Attach(f.win)
	require.NoError(t, <-started)
	assert.Equal(t, Initialized, f.canvas.Phase())
	assert.ErrorIs(t, f.canvas.Start(context.Background()), ErrStarted)
}

func TestStart_ContextCancelledBeforeAttach(t *testing.T) {
	f := newFixture(t, fastOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, f.canvas.Start(ctx), context.Canceled)
	assert.Equal(t, Constructed, f.canvas.Phase())
}

func TestStart_DisposedBeforeAttach(t *testing.T) {
	f := newFixture(t, fastOptions())
	done := make(chan error, 1)
	go func() { done <- f.canvas.Start(context.Background()) }()
	f.canvas.Dispose()
	assert.ErrorIs(t, <-done, ErrDisposed)
	assert.ErrorIs(t, f.canvas.Start(context.Background()), ErrDisposed)
}

func TestCanvas_FramesReachTheView(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.Attach(f.win)
	require.NoError(t, f.canvas.Start(context.Background()))

	require.Eventually(t, func() bool {
		f.host.Frame()
		return f.view.bounds() == image.Rect(0, 0, 1024, 1024)
	}, 2*time.Second, time.Millisecond)

	assert.Equal(t, [2]int{800, 600}, f.surface.Sizes()[0])
	st := f.canvas.Stats()
	assert.GreaterOrEqual(t, st.Captured, uint64(1))
	assert.GreaterOrEqual(t, st.Blitted, uint64(1))
}

func TestCanvas_ScaleChangeResizesSurface(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.SetLogicalSize(400, 300)
	f.host.Attach(f.win)
	require.NoError(t, f.canvas.Start(context.Background()))

	require.Eventually(t, func() bool { return len(f.surface.Sizes()) == 1 }, time.Second, time.Millisecond)
	f.win.SetOutputScale(2)
	require.Eventually(t, func() bool { return len(f.surface.Sizes()) == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, [2]int{800, 600}, f.surface.Sizes()[1])
	assert.Equal(t, 2.0, f.canvas.Geometry().Scale)
}

func TestCanvas_NoRedrawDriverWithoutFPS(t *testing.T) {
	opts := fastOptions()
	opts.FPS = 0
	f := newFixture(t, opts)
	f.host.Attach(f.win)
	require.NoError(t, f.canvas.Start(context.Background()))

	require.Eventually(t, func() bool { return f.surface.Displays() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, f.surface.Displays(), "only the reconciler's forced redraw")
	assert.Equal(t, uint64(0), f.canvas.Stats().Captured, "redraw after reshape is skipped")
}

func TestCanvas_ReshapeSuppressesNextCapture(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.Attach(f.win)
	f.canvas.reconciler.Tick()
	assert.Equal(t, 1, f.renders, "user listener still renders")
	assert.Equal(t, uint64(0), f.canvas.Stats().Captured)

	f.surface.Display()
	assert.Equal(t, uint64(1), f.canvas.Stats().Captured)
}

func TestDispose_Idempotent(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.Attach(f.win)
	require.NoError(t, f.canvas.Start(context.Background()))

	f.canvas.Dispose()
	f.canvas.Dispose()

	assert.Equal(t, Disposed, f.canvas.Phase())
	assert.True(t, f.surface.Destroyed())
	assert.NoError(t, f.canvas.Wait())

	displays := f.surface.Displays()
	f.host.Frame()
	f.surface.Display()
	assert.Equal(t, displays, f.surface.Displays(), "destroyed surface ignores redraws")
}

func TestDispose_OnWindowClose(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.Attach(f.win)
	require.NoError(t, f.canvas.Start(context.Background()))

	f.win.Close()
	assert.Equal(t, Disposed, f.canvas.Phase())
	assert.NoError(t, f.canvas.Wait())
}

func TestDispose_OnStartContext(t *testing.T) {
	f := newFixture(t, fastOptions())
	f.host.Attach(f.win)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, f.canvas.Start(ctx))

	cancel()
	require.Eventually(t, func() bool { return f.canvas.Phase() == Disposed }, time.Second, time.Millisecond)
	assert.NoError(t, f.canvas.Wait())
}

func TestRedrawInterval_Saturates(t *testing.T) {
	assert.Equal(t, time.Millisecond, RedrawInterval(2000))
	assert.Equal(t, time.Millisecond, RedrawInterval(1000))
	assert.Equal(t, time.Millisecond, RedrawInterval(60))
	assert.Equal(t, time.Millisecond, RedrawInterval(1))
}

func TestStrictInterval(t *testing.T) {
	assert.Equal(t, 16666666*time.Nanosecond, StrictInterval(60))
	assert.Equal(t, time.Millisecond, StrictInterval(2000))
	assert.Equal(t, time.Duration(0), StrictInterval(0))

	o := Options{FPS: 50, StrictFPS: true}
	assert.Equal(t, 20*time.Millisecond, o.redrawInterval())
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "constructed", Constructed.String())
	assert.Equal(t, "initialized", Initialized.String())
	assert.Equal(t, "disposed", Disposed.String())
}
