// Package bitmask unpacks one bit per pixel masks into RGBA canvases.
//
// Two source layouts exist. Full canvas masks are stored most significant bit
// first and cover the whole canvas. Inset masks are stored least significant
// bit first at half resolution and are placed in the middle of the canvas.
// The two orders are kept as found in the game data.
package bitmask

import (
	"bytes"
	"image"
	"image/color"

	"github.com/32bitkid/bitreader"
	"github.com/pkg/errors"
)

var ErrShortInput = errors.New("bitmask data too short")

var (
	White = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	Red   = color.NRGBA{0xff, 0, 0, 0xff}
	Green = color.NRGBA{0, 0xff, 0, 0xff}
	Blue  = color.NRGBA{0, 0, 0xff, 0xff}
	Pink  = color.NRGBA{0xff, 0, 0xff, 0xff}
)

// DecodeFull decodes rows x cols bits, most significant bit first, into a
// rows x cols canvas. Set bits take color on, clear bits stay transparent.
func DecodeFull(data []byte, rows, cols int, on color.NRGBA) (*image.NRGBA, error) {
	if cols%8 != 0 {
		return nil, errors.Errorf("bitmask width %d is not a multiple of 8", cols)
	}
	if need := rows * cols / 8; len(data) < need {
		return nil, errors.Wrapf(ErrShortInput, "have %d bytes, need %d", len(data), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	br := bitreader.NewReader(bytes.NewReader(data))
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			bit, err := br.Read1()
			if err != nil {
				return nil, errors.Wrapf(err, "read bit %d,%d", x, y)
			}
			if bit {
				img.SetNRGBA(x, y, on)
			}
		}
	}
	return img, nil
}

// DecodeInset decodes a (rows/2) x (cols/2) mask, least significant bit
// first, into the centre of a rows x cols canvas. The border stays
// transparent.
func DecodeInset(data []byte, rows, cols int, on color.NRGBA) (*image.NRGBA, error) {
	h, w := rows/2, cols/2
	if w%8 != 0 {
		return nil, errors.Errorf("inset width %d is not a multiple of 8", w)
	}
	stride := w / 8
	if need := h * stride; len(data) < need {
		return nil, errors.Wrapf(ErrShortInput, "have %d bytes, need %d", len(data), need)
	}

	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	x0, y0 := (cols-w)/2, (rows-h)/2
	for r := 0; r < h; r++ {
		row := data[r*stride : (r+1)*stride]
		for c, b := range row {
			for bit := uint(0); bit < 8; bit++ {
				if b&(0x01<<bit) != 0 {
					img.SetNRGBA(x0+c*8+int(bit), y0+r, on)
				}
			}
		}
	}
	return img, nil
}
