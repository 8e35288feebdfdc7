package tile

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Rows and columns are round(px/ts + 0.5): 600/512 + 0.5 rounds to 2, so
// rows 512..599 get a tile. A single row would leave them uncaptured.
func TestGridFor_800x600IsTwoByTwo(t *testing.T) {
	g := GridFor(800, 600, 512)
	assert.Equal(t, 2, g.Columns)
	assert.Equal(t, 2, g.Rows)

	w, h := g.PixelSize(512)
	assert.Equal(t, 1024, w)
	assert.Equal(t, 1024, h)
}

func TestGridFor_ExactMultipleAddsTile(t *testing.T) {
	g := GridFor(1024, 512, 512)
	assert.Equal(t, Grid{Columns: 3, Rows: 2}, g)
}

func TestGridFor_Degenerate(t *testing.T) {
	assert.Equal(t, 0, GridFor(0, 0, 512).Count())
	assert.Equal(t, 0, GridFor(-5, 300, 512).Count())
}

func TestGridFor_DefaultTileSize(t *testing.T) {
	assert.Equal(t, GridFor(800, 600, DefaultSize), GridFor(800, 600, 0))
}

func TestGridFor_AlwaysCovers(t *testing.T) {
	for _, ts := range []int{1, 7, 64, 256, 512} {
		for w := 1; w < 2100; w += 37 {
			for _, h := range []int{1, 299, 512, 513, 1080} {
				g := GridFor(w, h, ts)
				pw, ph := g.PixelSize(ts)
				assert.GreaterOrEqual(t, pw, w, "tile %d width %d", ts, w)
				assert.GreaterOrEqual(t, ph, h, "tile %d height %d", ts, h)
			}
		}
	}
}

func TestGrid_EachRowMajor(t *testing.T) {
	g := Grid{Columns: 3, Rows: 2}
	var got []int
	var rects []image.Rectangle
	g.Each(func(col, row, index int) {
		got = append(got, index)
		rects = append(rects, g.Rect(col, row, 10))
	})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, got)
	assert.Equal(t, image.Rect(0, 0, 10, 10), rects[0])
	assert.Equal(t, image.Rect(20, 10, 30, 20), rects[5])
}

func TestFlipRows(t *testing.T) {
	pix := []byte{1, 1, 2, 2, 3, 3}
	FlipRows(pix, 2)
	assert.Equal(t, []byte{3, 3, 2, 2, 1, 1}, pix)

	even := []byte{1, 2, 3, 4}
	FlipRows(even, 2)
	assert.Equal(t, []byte{3, 4, 1, 2}, even)

	FlipRows(even, 0)
	assert.Equal(t, []byte{3, 4, 1, 2}, even)
}
