package pyramid

import (
	"github.com/paulmach/orb/maptile"
)

// TileSize 默认瓦片大小
const TileSize = 256

// ZoomMax 最大级别, Generator.MaxZoom 的上限
const ZoomMax = 20

// Tile 编码后的瓦片
type Tile struct {
	T maptile.Tile
	C []byte
}

// NativeLevels returns the number of halvings, plus one, that bring the
// larger side of a width x height image down to one tile.
func NativeLevels(width, height, tileSize int) int {
	maxWidth := width
	if height > maxWidth {
		maxWidth = height
	}
	zooms := 0
	if tileSize <= 0 {
		return zooms
	}
	for w := tileSize; w <= maxWidth; w *= 2 {
		zooms++
	}
	return zooms
}

// TileCount is the number of tiles on one axis at level z.
func TileCount(z maptile.Zoom) uint32 {
	return 1 << uint32(z)
}
