package transfer

import "github.com/hubastard/glfx/engine/tile"

// Exchange is the payload handed between the stages together with the
// state. Pool and Grid belong to whichever stage currently owns the
// machine: the capture stage writes them in CaptureReady, the blit stage
// reads them in BlitReady.
type Exchange struct {
	Machine
	Pool *tile.Pool
	Grid tile.Grid
}

func NewExchange(tileSize int) *Exchange {
	return &Exchange{Pool: tile.NewPool(tileSize)}
}

// TileSize is the edge of every tile in the exchange.
func (x *Exchange) TileSize() int { return x.Pool.TileSize() }
