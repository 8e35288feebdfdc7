package tile

// Pool holds one pixel buffer per tile. Buffers are reused across frames
// while the tile count stays the same; shrinking drops buffers from the end
// and growing allocates fresh ones.
//
// A Pool is not safe for concurrent use. Ownership is handed between the
// capture and blit stages by the transfer state.
type Pool struct {
	size    int
	buffers [][]byte
}

// NewPool returns an empty pool for tiles of tileSize x tileSize pixels.
func NewPool(tileSize int) *Pool {
	if tileSize <= 0 {
		tileSize = DefaultSize
	}
	return &Pool{size: tileSize}
}

// TileSize is the tile edge in pixels.
func (p *Pool) TileSize() int { return p.size }

// Len is the number of buffers currently held.
func (p *Pool) Len() int { return len(p.buffers) }

// At returns the buffer for tile index i.
func (p *Pool) At(i int) []byte { return p.buffers[i] }

// Resize adjusts the pool to exactly target buffers, calling factory for
// each new one. A non-positive target empties the pool.
func (p *Pool) Resize(target int, factory func() []byte) {
	if target < 0 {
		target = 0
	}
	if len(p.buffers) > target {
		clear(p.buffers[target:])
		p.buffers = p.buffers[:target]
		return
	}
	for len(p.buffers) < target {
		p.buffers = append(p.buffers, factory())
	}
}

// Fit resizes the pool to the tile count of g.
func (p *Pool) Fit(g Grid) {
	p.Resize(g.Count(), p.newBuffer)
}

// BufferLen is the byte length of one tile buffer.
func (p *Pool) BufferLen() int { return p.size * p.size * BytesPerPixel }

func (p *Pool) newBuffer() []byte { return make([]byte, p.BufferLen()) }
