// Package capture reads the framebuffer of the native surface into the
// tile pool on the rendering thread.
package capture

import (
	"sync/atomic"

	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/geometry"
	"github.com/hubastard/glfx/engine/profiler"
	"github.com/hubastard/glfx/engine/tile"
	"github.com/hubastard/glfx/engine/transfer"
)

// Source supplies the geometry the framebuffer was rendered at.
type Source interface {
	Snapshot() geometry.Snapshot
}

// Stats counts capture outcomes.
type Stats struct {
	Captured uint64
	Dropped  uint64 // redraws that found the previous frame not yet blitted
}

type Stage struct {
	x    *transfer.Exchange
	geom Source

	captured atomic.Uint64
	dropped  atomic.Uint64
}

func NewStage(x *transfer.Exchange, geom Source) *Stage {
	return &Stage{x: x, geom: geom}
}

// Capture copies the framebuffer into the tile pool and hands it to the
// blit stage. It does nothing while the previous frame is still waiting to
// be blitted, or while the host has no area. Must only be called from the
// rendering thread.
func (s *Stage) Capture(fb core.Framebuffer) bool {
	if !s.x.Ready(transfer.CaptureReady) {
		s.dropped.Add(1)
		return false
	}
	snap := s.geom.Snapshot()
	if snap.Empty() {
		return false
	}

	end := profiler.Start("capture.Capture")
	defer end()

	ts := s.x.TileSize()
	pw, ph := snap.Physical()
	g := tile.GridFor(pw, ph, ts)
	if g != s.x.Grid {
		core.Logger().Debug("tile grid changed",
			"columns", g.Columns, "rows", g.Rows,
			"physical_w", pw, "physical_h", ph)
	}
	s.x.Grid = g
	s.x.Pool.Fit(g)

	g.Each(func(col, row, i int) {
		r := g.Rect(col, row, ts)
		fb.ReadRegion(r.Min.X, r.Min.Y, ts, ts, s.x.Pool.At(i))
	})

	s.x.Hand(transfer.CaptureReady)
	s.captured.Add(1)
	return true
}

func (s *Stage) Stats() Stats {
	return Stats{Captured: s.captured.Load(), Dropped: s.dropped.Load()}
}
