package ui

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubastard/glfx/engine/colors"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestPane_AttachSignal(t *testing.T) {
	pane := NewPane()
	select {
	case <-pane.Attached():
		t.Fatal("attached before SetRoot")
	default:
	}
	assert.Nil(t, pane.Window())

	win := NewWindow("test", 100, 50, 1)
	win.SetRoot(NewPane(pane))

	select {
	case <-pane.Attached():
	default:
		t.Fatal("nested pane not attached")
	}
	assert.Same(t, win, pane.Window())
}

func TestPane_LogicalSizeFollowsWindow(t *testing.T) {
	pane := NewPane()
	win := NewWindow("test", 320, 200, 2)
	win.SetRoot(pane)

	tk := NewToolkit(60)
	tk.Show(win)
	tk.Tick(time.Now())

	w, h := pane.LogicalSize()
	assert.Equal(t, 320.0, w)
	assert.Equal(t, 200.0, h)
	assert.Equal(t, image.Rect(0, 0, 640, 400), win.Frame().Bounds())

	tk.RunLater(func() { win.Resize(100, 80) })
	tk.Tick(time.Now())
	w, h = pane.LogicalSize()
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 80.0, h)
}

func TestImageView_FitPreservesRatio(t *testing.T) {
	v := NewImageView()
	v.SetImage(solid(200, 100, color.RGBA{A: 255}), 100, 100)
	v.Layout([2]float64{1000, 1000})
	w, h := v.Node().Size()
	assert.Equal(t, 100.0, w)
	assert.Equal(t, 50.0, h)

	v.SetImage(solid(100, 200, color.RGBA{A: 255}), 100, 100)
	v.Layout([2]float64{1000, 1000})
	w, h = v.Node().Size()
	assert.Equal(t, 50.0, w)
	assert.Equal(t, 100.0, h)
}

func TestWindow_CompositesScaledImage(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	view := NewImageView()
	pane := NewPane(view)
	win := NewWindow("test", 40, 20, 2).Background(colors.Black)
	win.SetRoot(pane)

	// 64x64 bitmap shown at 32x32 logical on a 2x display: 1:1 pixels,
	// cropped by the 40x20 pane.
	view.SetImage(solid(64, 64, red), 32, 32)
	tk := NewToolkit(60)
	tk.Show(win)
	tk.Tick(time.Now())

	frame := win.Frame()
	require.Equal(t, image.Rect(0, 0, 80, 40), frame.Bounds())
	assert.Equal(t, red, frame.RGBAAt(10, 10))
	assert.Equal(t, red, frame.RGBAAt(63, 39))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(70, 10))

	view.SetImage(solid(64, 64, red), 16, 16)
	tk.Tick(time.Now())
	assert.Equal(t, red, frame.RGBAAt(31, 31))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, frame.RGBAAt(40, 10))
}

func TestImageView_SmoothDownscale(t *testing.T) {
	red := color.RGBA{255, 0, 0, 255}
	view := NewImageView().Smooth()
	win := NewWindow("test", 20, 20, 1)
	win.SetRoot(NewPane(view))

	view.SetImage(solid(64, 64, red), 16, 16)
	tk := NewToolkit(60)
	tk.Show(win)
	tk.Tick(time.Now())

	c := win.Frame().RGBAAt(8, 8)
	assert.InDelta(t, 255, int(c.R), 2)
	assert.Zero(t, c.G)
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, win.Frame().RGBAAt(18, 8))
}

func TestWindow_CloseOnce(t *testing.T) {
	tk := NewToolkit(60)
	win := NewWindow("test", 10, 10, 1)
	tk.Show(win)
	calls := 0
	win.OnCloseRequest(func() { calls++ })

	win.Close()
	win.Close()
	assert.Equal(t, 1, calls)
	assert.True(t, win.Closed())
	assert.Empty(t, tk.Windows())
}

func TestToolkit_FrameHandlers(t *testing.T) {
	pane := NewPane()
	var ticks int
	pane.OnFrame(func(time.Time) { ticks++ })

	tk := NewToolkit(60)
	tk.Tick(time.Now())
	assert.Equal(t, 0, ticks, "not shown yet")

	win := NewWindow("test", 10, 10, 1)
	win.SetRoot(pane)
	tk.Show(win)
	tk.Tick(time.Now())
	tk.Tick(time.Now())
	assert.Equal(t, 2, ticks)
	assert.Equal(t, uint64(3), tk.Ticks())
}

func TestToolkit_RunStopsOnCancel(t *testing.T) {
	tk := NewToolkit(1000)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- tk.Run(ctx) }()

	ran := make(chan struct{})
	tk.RunLater(func() { close(ran) })
	<-ran
	cancel()
	assert.NoError(t, <-done)
}

func TestWindow_OutputScale(t *testing.T) {
	win := NewWindow("test", 10, 10, 0)
	assert.Equal(t, 1.0, win.OutputScale())
	win.SetOutputScale(1.5)
	assert.Equal(t, 1.5, win.OutputScale())
	win.SetOutputScale(-1)
	assert.Equal(t, 1.5, win.OutputScale())
}
