// Package pyramid cuts a square source image into a quadtree of fixed size
// PNG tiles, one directory per zoom level.
package pyramid

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/draw"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// Generator builds tile pyramids. Levels whose directory already exists are
// not rebuilt, which makes repeated runs cheap and lets an interrupted run
// resume.
type Generator struct {
	TileSize int
	// MaxZoom adds upsampled levels past the native resolution when it is
	// larger than the last native level.
	MaxZoom  int
	Template string
	Progress bool
	Log      logrus.FieldLogger
}

// Result reports what a Build call did.
type Result struct {
	NativeLevels int
	Written      []maptile.Zoom
	Skipped      []maptile.Zoom
	// Resampled counts downsampling passes.
	Resampled int
}

func NewGenerator(log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{
		TileSize: TileSize,
		MaxZoom:  -1,
		Template: DefaultTemplate,
		Log:      log,
	}
}

// Build writes the pyramid for img below dir. The image side must be the tile
// size times a power of two.
func (g *Generator) Build(img image.Image, dir string) (*Result, error) {
	if g.TileSize <= 0 {
		return nil, errors.Errorf("tile size %d is not positive", g.TileSize)
	}
	if g.MaxZoom > ZoomMax {
		return nil, errors.Errorf("max zoom %d is above %d", g.MaxZoom, ZoomMax)
	}
	layout := Layout{Root: dir, Template: g.Template}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "create tile directory '%s'", dir)
	}
	if err := writePNG(layout.FullPath(), img); err != nil {
		return nil, err
	}

	b := img.Bounds()
	zooms := NativeLevels(b.Dx(), b.Dy(), g.TileSize)
	if zooms == 0 {
		return nil, errors.Errorf("image %dx%d is smaller than one %d tile", b.Dx(), b.Dy(), g.TileSize)
	}
	res := &Result{NativeLevels: zooms}

	lowestMissing := zooms
	for z := 0; z < zooms; z++ {
		if !levelDone(layout, maptile.Zoom(z)) {
			lowestMissing = z
			break
		}
	}

	// each level comes from the one above it, never from the source again
	levels := make([]*image.NRGBA, zooms)
	levels[zooms-1] = toNRGBA(img)
	for z := zooms - 2; z >= lowestMissing; z-- {
		levels[z] = downsample(levels[z+1])
		res.Resampled++
	}

	for z := zooms - 1; z >= 0; z-- {
		zoom := maptile.Zoom(z)
		if levelDone(layout, zoom) {
			g.Log.WithFields(logrus.Fields{"level": z, "path": layout.LevelDir(zoom)}).Debug("level exists, skipping")
			res.Skipped = append(res.Skipped, zoom)
			continue
		}
		window := g.TileSize
		err := g.writeLevel(layout, zoom, func(x, y uint32) image.Image {
			return crop(levels[z], int(x)*window, int(y)*window, window)
		})
		if err != nil {
			return res, err
		}
		res.Written = append(res.Written, zoom)
	}

	native := levels[zooms-1]
	for z := zooms; z <= g.MaxZoom; z++ {
		zoom := maptile.Zoom(z)
		window := g.TileSize >> uint(z-(zooms-1))
		if window == 0 {
			g.Log.WithField("level", z).Warn("zoom exceeds source resolution, stopping")
			break
		}
		if levelDone(layout, zoom) {
			res.Skipped = append(res.Skipped, zoom)
			continue
		}
		err := g.writeLevel(layout, zoom, func(x, y uint32) image.Image {
			return upsample(crop(native, int(x)*window, int(y)*window, window), g.TileSize)
		})
		if err != nil {
			return res, err
		}
		res.Written = append(res.Written, zoom)
	}

	return res, nil
}

// writeLevel renders every tile of level z into a scratch directory and moves
// it into place once all tiles are written.
func (g *Generator) writeLevel(layout Layout, z maptile.Zoom, render func(x, y uint32) image.Image) error {
	log := g.Log.WithFields(logrus.Fields{"level": z, "path": layout.LevelDir(z)})
	log.Info("Generate Zoom")

	if err := cleanScratch(layout, z); err != nil {
		return errors.Wrapf(err, "clean scratch for level %d", z)
	}
	scratch := scratchLayout(layout, z)

	n := TileCount(z)
	bar := g.newBar(int(n*n), z)
	for x := uint32(0); x < n; x++ {
		for y := uint32(0); y < n; y++ {
			t := maptile.New(x, y, z)
			td, err := encodeTile(t, render(x, y))
			if err != nil {
				return err
			}
			if err := saveToFile(scratch, td); err != nil {
				return err
			}
			if bar != nil {
				bar.Increment()
			}
		}
	}
	if bar != nil {
		bar.FinishPrint(fmt.Sprintf("Zoom %d finished ~", z))
	}

	if err := commitLevel(layout, z); err != nil {
		return errors.Wrapf(err, "commit level %d", z)
	}
	return cleanScratch(layout, z)
}

func (g *Generator) newBar(total int, z maptile.Zoom) *pb.ProgressBar {
	if !g.Progress {
		return nil
	}
	bar := pb.New(total).Prefix(fmt.Sprintf("Zoom %d : ", z))
	bar.SetRefreshRate(time.Second)
	return bar.Start()
}

func encodeTile(t maptile.Tile, img image.Image) (Tile, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Tile{}, errors.Wrapf(err, "encode tile %v", t)
	}
	return Tile{T: t, C: buf.Bytes()}, nil
}

func saveToFile(layout Layout, tile Tile) error {
	fileName := layout.TilePath(tile.T)
	if err := os.MkdirAll(filepath.Dir(fileName), os.ModePerm); err != nil {
		return errors.Wrapf(err, "create %v tile dir", tile.T)
	}
	if err := os.WriteFile(fileName, tile.C, 0644); err != nil {
		return errors.Wrapf(err, "create %v tile file", tile.T)
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.Wrapf(err, "encode '%s'", path)
	}
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "write '%s'", path)
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	n := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(n, n.Bounds(), img, b.Min, draw.Src)
	return n
}

// downsample halves img with a Catmull-Rom filter.
func downsample(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx()/2, b.Dy()/2))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// upsample enlarges img to size x size without interpolation, so the source
// pixels stay visible as blocks.
func upsample(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

func crop(img *image.NRGBA, x, y, size int) image.Image {
	return img.SubImage(image.Rect(x, y, x+size, y+size))
}
