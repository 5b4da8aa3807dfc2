// Package raster builds source images for the tile pyramid from stitched
// textures and scalar fields.
package raster

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"
)

var ErrShortField = errors.New("scalar field data too short")

// Float32Field reads size x size little-endian float32 samples.
func Float32Field(data []byte, size int) ([]float64, error) {
	n := size * size
	if len(data) < n*4 {
		return nil, errors.Wrapf(ErrShortField, "have %d bytes, need %d", len(data), n*4)
	}
	field := make([]float64, n)
	for i := range field {
		field[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return field, nil
}

// Uint8Field reads size x size byte samples.
func Uint8Field(data []byte, size int) ([]float64, error) {
	n := size * size
	if len(data) < n {
		return nil, errors.Wrapf(ErrShortField, "have %d bytes, need %d", len(data), n)
	}
	field := make([]float64, n)
	for i := range field {
		field[i] = float64(data[i])
	}
	return field, nil
}

// Normalize rescales field in place to [0,1]. A constant field becomes all
// zeros.
func Normalize(field []float64) {
	if len(field) == 0 {
		return
	}
	lo, hi := field[0], field[0]
	for _, v := range field {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	for i, v := range field {
		if span == 0 {
			field[i] = 0
		} else {
			field[i] = (v - lo) / span
		}
	}
}

// Colorize renders a normalized square field through the jet ramp.
func Colorize(field []float64, size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, Jet(field[y*size+x]))
		}
	}
	return img
}

// FlipVertical mirrors img top to bottom in place.
func FlipVertical(img *image.NRGBA) {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	tmp := make([]byte, rowLen)
	for top, bottom := 0, b.Dy()-1; top < bottom; top, bottom = top+1, bottom-1 {
		t := img.Pix[top*img.Stride : top*img.Stride+rowLen]
		u := img.Pix[bottom*img.Stride : bottom*img.Stride+rowLen]
		copy(tmp, t)
		copy(t, u)
		copy(u, tmp)
	}
}

// Stitch places grid[y][x] side by side. All cells must share the size of
// grid[0][0].
func Stitch(grid [][]image.Image) (*image.NRGBA, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, errors.New("empty texture grid")
	}
	cell := grid[0][0].Bounds()
	w, h := cell.Dx(), cell.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w*len(grid[0]), h*len(grid)))
	for y, row := range grid {
		for x, img := range row {
			b := img.Bounds()
			if b.Dx() != w || b.Dy() != h {
				return nil, errors.Errorf("texture %d,%d is %dx%d, expected %dx%d", x, y, b.Dx(), b.Dy(), w, h)
			}
			draw.Draw(dst, image.Rect(x*w, y*h, (x+1)*w, (y+1)*h), img, b.Min, draw.Src)
		}
	}
	return dst, nil
}
