package canvas

import (
	"time"

	"github.com/hubastard/glfx/engine/core"
	"github.com/hubastard/glfx/engine/geometry"
	"github.com/hubastard/glfx/engine/tile"
)

// DefaultFPS is the redraw rate requested when none is configured.
const DefaultFPS = 1000

type Options struct {
	// FPS drives forced redraws; zero or negative leaves redraws to the
	// native surface's own damage events.
	FPS int
	// StrictFPS uses 1000/FPS milliseconds between redraws instead of the
	// saturating interval of RedrawInterval.
	StrictFPS bool

	TileSize       int
	PollInterval   time.Duration
	FallbackWidth  int
	FallbackHeight int

	// Screens positions the native surface past the bottom-right corner of
	// every display. Optional.
	Screens core.Screens
}

func DefaultOptions() Options {
	return Options{
		FPS:            DefaultFPS,
		TileSize:       tile.DefaultSize,
		PollInterval:   geometry.DefaultPollInterval,
		FallbackWidth:  geometry.DefaultFallback,
		FallbackHeight: geometry.DefaultFallback,
	}
}

func (o *Options) defaults() {
	if o.TileSize <= 0 {
		o.TileSize = tile.DefaultSize
	}
}

func (o Options) redrawInterval() time.Duration {
	if o.StrictFPS {
		return StrictInterval(o.FPS)
	}
	return RedrawInterval(o.FPS)
}

// RedrawInterval is max(1, 1000/max(fps, 1000)) milliseconds. The inner max
// saturates: every fps at or above 1000 (and in fact every fps) yields 1ms.
// Kept for compatibility; see StrictInterval.
func RedrawInterval(fps int) time.Duration {
	ms := max(1, 1000/max(fps, 1000))
	return time.Duration(ms) * time.Millisecond
}

// StrictInterval is 1000/fps milliseconds, never below 1ms.
func StrictInterval(fps int) time.Duration {
	if fps <= 0 {
		return 0
	}
	return max(time.Second/time.Duration(fps), time.Millisecond)
}
