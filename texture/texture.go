// Package texture turns archive texture resources into images.
package texture

import (
	"image"
	_ "image/png"
	"io"

	"github.com/pkg/errors"
)

// Decoder returns the top mip level of a texture resource.
type Decoder interface {
	Decode(r io.Reader) (image.Image, error)
}

// ImageDecoder handles textures already converted to a format registered
// with the image package.
type ImageDecoder struct{}

func (ImageDecoder) Decode(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode texture")
	}
	return img, nil
}
