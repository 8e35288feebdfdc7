// Package blit copies captured tiles into the UI bitmap on the UI thread.
package blit

import (
	"image"
	"sync/atomic"

	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/profiler"
	"github.com/hubastard/glfx/engine/tile"
	"github.com/hubastard/glfx/engine/transfer"
)

// View displays a bitmap at a size in logical units.
type View interface {
	SetImage(img image.Image, displayW, displayH float64)
}

type Stage struct {
	x      *transfer.Exchange
	view   View
	bitmap *RGB

	blitted atomic.Uint64
}

func NewStage(x *transfer.Exchange, view View) *Stage {
	return &Stage{x: x, view: view}
}

// Blit writes the pending frame into the bitmap and returns the buffers to
// the capture stage. It does nothing unless a captured frame is waiting.
// Must only be called from the UI thread.
func (s *Stage) Blit(scale float64) bool {
	if !s.x.Ready(transfer.BlitReady) {
		return false
	}

	end := profiler.Start("blit.Blit")
	defer end()

	ts := s.x.TileSize()
	g := s.x.Grid
	w, h := g.PixelSize(ts)
	if s.bitmap == nil || s.bitmap.Rect.Dx() != w || s.bitmap.Rect.Dy() != h {
		core.Logger().Debug("bitmap reallocated", "width", w, "height", h)
		s.bitmap = NewRGB(image.Rect(0, 0, w, h))
	}
	if scale <= 0 {
		scale = 1
	}
	s.view.SetImage(s.bitmap, float64(w)/scale, float64(h)/scale)

	stride := ts * tile.BytesPerPixel
	g.Each(func(col, row, i int) {
		s.bitmap.SetRegion(g.Rect(col, row, ts), s.x.Pool.At(i), stride)
	})

	s.x.Hand(transfer.BlitReady)
	s.blitted.Add(1)
	return true
}

// Bitmap is the current destination image. UI thread only.
func (s *Stage) Bitmap() *RGB { return s.bitmap }

// Blitted is the number of frames written so far.
func (s *Stage) Blitted() uint64 { return s.blitted.Load() }
