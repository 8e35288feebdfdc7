// Package geometry tracks the logical size of the hosting element and the
// output scale of its window, and keeps the native surface sized to match.
package geometry

import "math"

// Snapshot is the last observed host geometry. It is passed by value.
type Snapshot struct {
	Width, Height float64 // logical units
	Scale         float64 // physical pixels per logical unit
}

// Empty reports whether the snapshot has no drawable area.
func (s Snapshot) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

// Physical is the size in device pixels, truncated.
func (s Snapshot) Physical() (w, h int) {
	return int(s.Width * s.Scale), int(s.Height * s.Scale)
}

// PhysicalOr is Physical with a per-axis fallback used when the logical
// extent on that axis is not positive.
func (s Snapshot) PhysicalOr(fallbackW, fallbackH int) (w, h int) {
	w, h = s.Physical()
	if s.Width <= 0 {
		w = fallbackW
	}
	if s.Height <= 0 {
		h = fallbackH
	}
	return w, h
}

// ScreenSize converts a size in framebuffer pixels into window coordinates,
// given a window currently win in coordinates and fb in pixels. On HiDPI
// platforms where one coordinate covers several pixels the result shrinks
// accordingly. An unknown ratio is taken as 1.
func ScreenSize(physW, physH int, win, fb [2]int) (w, h int) {
	return toScreen(physW, win[0], fb[0]), toScreen(physH, win[1], fb[1])
}

func toScreen(px, win, fb int) int {
	if win <= 0 || fb <= 0 || win == fb {
		return px
	}
	return max(1, int(math.Round(float64(px)*float64(win)/float64(fb))))
}
