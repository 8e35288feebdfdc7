package tile

import (
	"image"
	"math"
)

// DefaultSize is the tile edge in pixels.
const DefaultSize = 512

// BytesPerPixel of a tile buffer (packed RGB).
const BytesPerPixel = 3

// Grid is the tile layout covering a physical surface.
type Grid struct {
	Columns, Rows int
}

// GridFor returns the grid covering a physW x physH surface. Each axis is
// rounded with a half-tile bias so the grid always covers the surface,
// at the cost of one extra row or column on exact multiples.
func GridFor(physW, physH, tileSize int) Grid {
	if tileSize <= 0 {
		tileSize = DefaultSize
	}
	return Grid{
		Columns: tilesFor(physW, tileSize),
		Rows:    tilesFor(physH, tileSize),
	}
}

func tilesFor(px, tileSize int) int {
	if px <= 0 {
		return 0
	}
	return int(math.Floor(float64(px)/float64(tileSize) + 0.5 + 0.5))
}

// Count is the number of tiles in the grid.
func (g Grid) Count() int { return g.Columns * g.Rows }

// Index of the tile at (col, row) in row-major order.
func (g Grid) Index(col, row int) int { return row*g.Columns + col }

// PixelSize is the area covered by the grid.
func (g Grid) PixelSize(tileSize int) (w, h int) {
	return g.Columns * tileSize, g.Rows * tileSize
}

// Rect is the pixel rectangle of the tile at (col, row).
func (g Grid) Rect(col, row, tileSize int) image.Rectangle {
	x, y := col*tileSize, row*tileSize
	return image.Rect(x, y, x+tileSize, y+tileSize)
}

// Each calls fn for every tile in row-major order.
func (g Grid) Each(fn func(col, row, index int)) {
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Columns; col++ {
			fn(col, row, g.Index(col, row))
		}
	}
}

// FlipRows reverses the order of the rows of a packed pixel buffer in place.
func FlipRows(pix []byte, stride int) {
	if stride <= 0 {
		return
	}
	rows := len(pix) / stride
	tmp := make([]byte, stride)
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := pix[top*stride : (top+1)*stride]
		b := pix[bottom*stride : (bottom+1)*stride]
		copy(tmp, a)
		copy(a, b)
		copy(b, tmp)
	}
}
