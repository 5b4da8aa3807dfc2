// Package coord projects world positions into map space.
package coord

import (
	"math"

	"github.com/paulmach/orb"
)

// Default calibration: the 32 km square world maps onto a 256 unit map whose
// vertical axis grows downward.
const (
	WorldHalfExtent = 16 * 1024
	MapHalfExtent   = 128
)

type Transform struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX float64
	OffsetY float64
}

func Default() Transform {
	return Transform{
		ScaleX:  MapHalfExtent / float64(WorldHalfExtent),
		ScaleY:  -MapHalfExtent / float64(WorldHalfExtent),
		OffsetX: MapHalfExtent,
		OffsetY: -MapHalfExtent,
	}
}

// ToMap maps world x and world z (or y) to a map point.
func (t Transform) ToMap(x, z float64) orb.Point {
	return orb.Point{x*t.ScaleX + t.OffsetX, z*t.ScaleY + t.OffsetY}
}

// Ring maps world (x, z) pairs to a map ring, keeping order.
func (t Transform) Ring(xz [][2]float64) orb.Ring {
	ring := make(orb.Ring, len(xz))
	for i, p := range xz {
		ring[i] = t.ToMap(p[0], p[1])
	}
	return ring
}

// Finite reports whether both coordinates of p are neither NaN nor infinite.
func Finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
