package raster

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

type stop struct {
	pos float64
	col colorful.Color
}

// jet is the classic blue-cyan-yellow-red ramp. Every channel is linear
// between consecutive stops.
var jet = []stop{
	{0.000, colorful.Color{R: 0, G: 0, B: 0.5}},
	{0.110, colorful.Color{R: 0, G: 0, B: 1}},
	{0.125, colorful.Color{R: 0, G: 0, B: 1}},
	{0.340, colorful.Color{R: 0, G: 0.86, B: 1}},
	{0.350, colorful.Color{R: 0, G: 0.9, B: 0.9677}},
	{0.375, colorful.Color{R: 0.0806, G: 1, B: 0.8871}},
	{0.640, colorful.Color{R: 0.9355, G: 1, B: 0.0323}},
	{0.650, colorful.Color{R: 0.9677, G: 0.963, B: 0}},
	{0.660, colorful.Color{R: 1, G: 0.9259, B: 0}},
	{0.890, colorful.Color{R: 1, G: 0.0741, B: 0}},
	{0.910, colorful.Color{R: 0.9091, G: 0, B: 0}},
	{1.000, colorful.Color{R: 0.5, G: 0, B: 0}},
}

// Jet maps t in [0,1] onto the jet ramp. Values outside are clamped.
func Jet(t float64) color.NRGBA {
	if t <= jet[0].pos {
		return toNRGBA(jet[0].col)
	}
	for i := 1; i < len(jet); i++ {
		if t <= jet[i].pos {
			lo, hi := jet[i-1], jet[i]
			f := (t - lo.pos) / (hi.pos - lo.pos)
			return toNRGBA(lo.col.BlendRgb(hi.col, f).Clamped())
		}
	}
	return toNRGBA(jet[len(jet)-1].col)
}

func toNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.RGB255()
	return color.NRGBA{r, g, b, 0xff}
}
