package webmap

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/pkg/errors"

	"github.com/RyMaxim/deca/bitmask"
	"github.com/RyMaxim/deca/raster"
	"github.com/RyMaxim/deca/vfs"
)

type SourceKind string

const (
	// TextureGrid stitches Grid x Grid textures named by Path % index.
	TextureGrid SourceKind = "texture_grid"
	Texture     SourceKind = "texture"
	// Heightfield is Size x Size little-endian float32 samples.
	Heightfield SourceKind = "heightfield"
	// Waterfield is Size x Size byte samples.
	Waterfield   SourceKind = "waterfield"
	BitmaskFull  SourceKind = "bitmask_full"
	BitmaskInset SourceKind = "bitmask_inset"
)

// RasterSource is one image turned into a tile pyramid under tile_<Name>.
type RasterSource struct {
	Name  string
	Kind  SourceKind
	Path  string
	Grid  int
	Size  int
	Color color.NRGBA
	Flip  bool
}

// DirName is the pyramid directory name inside the map directory.
func (s RasterSource) DirName() string {
	return "tile_" + s.Name
}

var spawnCreatures = []string{"dreadnought", "harvester", "hunter", "scout", "skirmisher"}

var spawnClasses = []struct {
	suffix string
	color  color.NRGBA
}{
	{"a", bitmask.Red},
	{"b", bitmask.Green},
	{"c", bitmask.Blue},
	{"d", bitmask.Pink},
}

// DefaultRasters lists the map layers of the game archive.
func DefaultRasters() []RasterSource {
	sources := []RasterSource{
		{Name: "t", Kind: TextureGrid, Path: "textures/ui/map_reserve_0/zoom3/%d.ddsc", Grid: 16},
		{Name: "wb", Kind: TextureGrid, Path: "textures/ui/warboard_map/zoom3/%d.ddsc", Grid: 16},
		{Name: "h", Kind: Heightfield, Path: "terrain/global_heightfield.rawc", Size: 512},
		{Name: "wn", Kind: Waterfield, Path: "terrain/water_nvwaveworks_mod.rawc", Size: 1024, Flip: true},
		{Name: "wg", Kind: Waterfield, Path: "terrain/water_gerstner_mod.rawc", Size: 1024, Flip: true},
		{Name: "wnm", Kind: BitmaskFull, Path: "terrain/nv_water_cull_mask.rawc", Size: 512, Color: bitmask.White, Flip: true},
	}
	for _, crit := range spawnCreatures {
		for _, c := range spawnClasses {
			sources = append(sources, RasterSource{
				Name:  fmt.Sprintf("spawn_%s_%s", crit, c.suffix),
				Kind:  BitmaskInset,
				Path:  fmt.Sprintf("settings/hp_settings/hp_ai_textures/spawn_maps/spawn_%s_%s.bmp_datac", crit, c.suffix),
				Size:  512,
				Color: c.color,
			})
		}
	}
	for _, b := range []struct {
		name  string
		color color.NRGBA
	}{
		{"dreadnought_forbidden_map", bitmask.Red},
		{"flee_reserve_0", bitmask.Green},
		{"animal_forbidden_map_0", bitmask.Blue},
	} {
		sources = append(sources, RasterSource{
			Name:  "bitmap_" + b.name,
			Kind:  BitmaskInset,
			Path:  fmt.Sprintf("settings/hp_settings/hp_ai_textures/bitmaps/%s.bmp_datac", b.name),
			Size:  512,
			Color: b.color,
		})
	}
	return sources
}

// loadRaster builds the source image of s.
func (t *Task) loadRaster(s RasterSource) (image.Image, error) {
	switch s.Kind {
	case TextureGrid:
		return t.loadTextureGrid(s)
	case Texture:
		_, data, err := vfs.ReadFirst(t.archive, s.Path)
		if err != nil {
			return nil, err
		}
		return t.textures.Decode(bytes.NewReader(data))
	}

	_, data, err := vfs.ReadFirst(t.archive, s.Path)
	if err != nil {
		return nil, err
	}
	var img *image.NRGBA
	switch s.Kind {
	case Heightfield, Waterfield:
		img, err = scalarImage(s, data)
	case BitmaskFull:
		img, err = bitmask.DecodeFull(data, s.Size, s.Size, s.Color)
	case BitmaskInset:
		img, err = t.insetImage(s, data)
	default:
		return nil, errors.Errorf("unknown raster kind %q", s.Kind)
	}
	if err != nil {
		return nil, err
	}
	if s.Flip {
		raster.FlipVertical(img)
	}
	return img, nil
}

func (t *Task) loadTextureGrid(s RasterSource) (image.Image, error) {
	grid := make([][]image.Image, s.Grid)
	for y := range grid {
		grid[y] = make([]image.Image, s.Grid)
	}
	for i := 0; i < s.Grid*s.Grid; i++ {
		x, y := i%s.Grid, i/s.Grid
		_, data, err := vfs.ReadFirst(t.archive, fmt.Sprintf(s.Path, i))
		if err != nil {
			return nil, err
		}
		img, err := t.textures.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrapf(err, "texture %d", i)
		}
		grid[y][x] = img
	}
	return raster.Stitch(grid)
}

func scalarImage(s RasterSource, data []byte) (*image.NRGBA, error) {
	var (
		field []float64
		err   error
	)
	if s.Kind == Heightfield {
		field, err = raster.Float32Field(data, s.Size)
	} else {
		field, err = raster.Uint8Field(data, s.Size)
	}
	if err != nil {
		return nil, err
	}
	raster.Normalize(field)
	return raster.Colorize(field, s.Size), nil
}

// insetImage decodes the first layer bitfield of a bitmap record.
func (t *Task) insetImage(s RasterSource, data []byte) (*image.NRGBA, error) {
	rec, err := t.records.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", s.Path)
	}
	inst, err := rec.Instance(0)
	if err != nil {
		return nil, err
	}
	layers, err := inst.Structs("Layers")
	if err != nil {
		return nil, err
	}
	if len(layers) == 0 {
		return nil, errors.Errorf("%q has no layers", s.Path)
	}
	bits, err := layers[0].Bytes("Bitfield")
	if err != nil {
		return nil, err
	}
	return bitmask.DecodeInset(bits, s.Size, s.Size, s.Color)
}
