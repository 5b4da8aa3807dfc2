package webmap

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/RyMaxim/deca/adf"
	"github.com/RyMaxim/deca/bitmask"
	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/rtpc"
	"github.com/RyMaxim/deca/texture"
	"github.com/RyMaxim/deca/translate"
	"github.com/RyMaxim/deca/vfs"
)

const testScene = `
props:
  _class: CWorld
children:
  - props:
      _class: CRegion
      "0x6ca6d4b9": [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
      border: [0, 0, 0, 1, 1, 0, 0, 1, 1, 0, 1, 1, 0, 0, 1, 1]
  - props:
      _class: CPlayerSpawnPoint
      "0x6ca6d4b9": [1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1]
  - props:
      _class: CStaticMesh
`

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 0x80, 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func quietLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.WorkDir = t.TempDir()
	cfg.TileSize = 16
	cfg.TranslationPath = ""
	cfg.CollectionPath = ""
	cfg.Rasters = []RasterSource{{Name: "t", Kind: Texture, Path: "textures/map.png"}}
	return cfg
}

func testArchive(t *testing.T) *vfs.Memory {
	a := vfs.NewMemory()
	a.Add("textures/map.png", pngBytes(t, 256))
	a.Add("worlds/main/world.blo", []byte(testScene))
	return a
}

func newTestTask(cfg Config, a vfs.Archive) *Task {
	return NewTask(cfg, a, adf.YAMLDecoder{}, rtpc.YAMLDecoder{}, texture.ImageDecoder{}, quietLog())
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	task := newTestTask(cfg, testArchive(t))
	if task.ID == "" {
		t.Errorf("task has no id")
	}

	sum, err := task.Run()
	if err != nil {
		t.Fatal(err)
	}

	res := sum.Pyramids["t"]
	if res == nil || res.NativeLevels != 5 {
		t.Fatalf("pyramid=%s; expected 5 native levels", spew.Sdump(res))
	}
	tiles := filepath.Join(cfg.MapDir(), "tile_t")
	for _, p := range []string{"full.png", "0/0/0.png", "4/15/15.png"} {
		if !exists(filepath.Join(tiles, p)) {
			t.Errorf("%s missing", p)
		}
	}
	if exists(filepath.Join(tiles, "5")) {
		t.Errorf("level 5 written past the native resolution")
	}

	for key, n := range map[string]int{
		feature.Regions:      1,
		"CPlayerSpawnPoint":  1,
		"CPOI":               0,
		feature.Collectables: 0,
		feature.Bounds:       0,
	} {
		if sum.Counts[key] != n {
			t.Errorf("count[%s]=%d; expected %d", key, sum.Counts[key], n)
		}
	}
	if sum.FailedNodes != 0 {
		t.Errorf("%d failed nodes", sum.FailedNodes)
	}

	full, err := os.ReadFile(filepath.Join(cfg.MapDir(), feature.FullDataFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range []string{"var region_data = ", "var c_player_spawn_point_data = ", "var collectable_data = "} {
		if !strings.Contains(string(full), v) {
			t.Errorf("%s has no %q", feature.FullDataFile, v)
		}
	}
	data, err := os.ReadFile(filepath.Join(cfg.MapDir(), feature.DataFile))
	if err != nil {
		t.Fatal(err)
	}
	if s := string(data); !strings.HasPrefix(s, "var collectable_data = ") || strings.Contains(s, "region_data") {
		t.Errorf("%s=%q", feature.DataFile, s)
	}
}

func TestCollectFeatures(t *testing.T) {
	task := newTestTask(testConfig(t), testArchive(t))
	b, err := task.collectFeatures(translate.Table{}, &Summary{})
	if err != nil {
		t.Fatal(err)
	}

	xf := coord.Default()
	regions := b.Get(feature.Regions)
	if len(regions) != 1 {
		t.Fatalf("%d regions; expected 1", len(regions))
	}
	poly, ok := regions[0].Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 {
		t.Fatalf("region geometry=%s", spew.Sdump(regions[0].Geometry))
	}
	expected := orb.Ring{xf.ToMap(0, 0), xf.ToMap(1, 0), xf.ToMap(1, 1), xf.ToMap(0, 1)}
	if !poly[0].Equal(expected) {
		t.Errorf("ring=%v; expected %v", poly[0], expected)
	}

	spawns := b.Get("CPlayerSpawnPoint")
	if len(spawns) != 1 {
		t.Fatalf("%d spawn points; expected 1", len(spawns))
	}
	if p := spawns[0].Point(); p != (orb.Point{128, -128}) {
		t.Errorf("spawn=%v; expected [128 -128]", p)
	}
}

func TestRunMissingResource(t *testing.T) {
	cfg := testConfig(t)
	cfg.TranslationPath = "text/master_eng.stringlookup"
	_, err := newTestTask(cfg, testArchive(t)).Run()
	if !errors.Is(err, vfs.ErrResourceNotFound) {
		t.Errorf("err=%v; expected ErrResourceNotFound", err)
	}

	cfg = testConfig(t)
	cfg.Rasters[0].Path = "textures/none.png"
	_, err = newTestTask(cfg, testArchive(t)).Run()
	if !errors.Is(err, vfs.ErrResourceNotFound) {
		t.Errorf("raster err=%v; expected ErrResourceNotFound", err)
	}
}

func TestRunMalformedScene(t *testing.T) {
	a := testArchive(t)
	a.Add("worlds/broken.blo", []byte("props: ["))
	_, err := newTestTask(testConfig(t), a).Run()
	if !errors.Is(err, rtpc.ErrMalformedRecord) {
		t.Errorf("err=%v; expected ErrMalformedRecord", err)
	}
}

func TestRunTranslatedCollectables(t *testing.T) {
	cfg := testConfig(t)
	cfg.TranslationPath = "text/en.yaml"
	cfg.CollectionPath = "settings/collection.collectionc"
	a := testArchive(t)
	a.Add(cfg.TranslationPath, []byte("horn_name: Old Horn\n"))
	a.Add(cfg.CollectionPath, []byte(`
instances:
  - Collectibles:
      - ID: 3
        Name: horn
        Position: [0, 0, 0]
`))

	sum, err := newTestTask(cfg, a).Run()
	if err != nil {
		t.Fatal(err)
	}
	if sum.Counts[feature.Collectables] != 1 {
		t.Errorf("collectables=%d; expected 1", sum.Counts[feature.Collectables])
	}
	data, err := os.ReadFile(filepath.Join(cfg.MapDir(), feature.DataFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"collectable_name_tr": "Old Horn"`) {
		t.Errorf("%s=%s", feature.DataFile, data)
	}
}

func TestScalarAndMaskSources(t *testing.T) {
	const size = 32
	height := make([]byte, size*size*4)
	for i := 0; i < size*size; i++ {
		binary.LittleEndian.PutUint32(height[i*4:], math.Float32bits(float32(i)))
	}
	water := make([]byte, size*size)
	cull := bytes.Repeat([]byte{0xff}, size*size/8)

	a := vfs.NewMemory()
	a.Add("terrain/h.rawc", height)
	a.Add("terrain/w.rawc", water)
	a.Add("terrain/cull.rawc", cull)
	a.Add("spawn/a.bmp_datac", []byte(`
instances:
  - Layers:
      - Bitfield: [4294967295, 4294967295, 4294967295, 4294967295, 4294967295, 4294967295, 4294967295, 4294967295]
`))

	cfg := testConfig(t)
	cfg.SceneSuffix = ""
	cfg.BoundsSuffix = ""
	cfg.Rasters = []RasterSource{
		{Name: "h", Kind: Heightfield, Path: "terrain/h.rawc", Size: size},
		{Name: "w", Kind: Waterfield, Path: "terrain/w.rawc", Size: size, Flip: true},
		{Name: "m", Kind: BitmaskFull, Path: "terrain/cull.rawc", Size: size, Color: bitmask.White, Flip: true},
		{Name: "s", Kind: BitmaskInset, Path: "spawn/a.bmp_datac", Size: size, Color: bitmask.Red},
	}
	task := newTestTask(cfg, a)

	for _, s := range cfg.Rasters {
		img, err := task.loadRaster(s)
		if err != nil {
			t.Fatalf("loadRaster(%s): %v", s.Name, err)
		}
		if b := img.Bounds(); b.Dx() != size || b.Dy() != size {
			t.Errorf("%s bounds=%v", s.Name, b)
		}
	}

	img, _ := task.loadRaster(cfg.Rasters[3])
	if c := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); c.A != 0 {
		t.Errorf("inset border=%v; expected transparent", c)
	}
	if c := color.NRGBAModel.Convert(img.At(size/2, size/2)).(color.NRGBA); c != bitmask.Red {
		t.Errorf("inset centre=%v; expected %v", c, bitmask.Red)
	}

	sum, err := task.Run()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range cfg.Rasters {
		if res := sum.Pyramids[s.Name]; res == nil || res.NativeLevels != 2 {
			t.Errorf("pyramid %s=%s", s.Name, spew.Sdump(res))
		}
	}
}

func TestTextureGridSkipped(t *testing.T) {
	cfg := testConfig(t)
	cfg.SceneSuffix = ""
	cfg.Rasters = []RasterSource{{Name: "g", Kind: TextureGrid, Path: "tex/%d.png", Grid: 2}}

	a := vfs.NewMemory()
	for _, p := range []string{"tex/0.png", "tex/1.png", "tex/2.png", "tex/3.png"} {
		a.Add(p, pngBytes(t, 16))
	}
	sum, err := newTestTask(cfg, a).Run()
	if err != nil {
		t.Fatal(err)
	}
	if res := sum.Pyramids["g"]; res == nil || res.NativeLevels != 2 {
		t.Fatalf("pyramid=%s", spew.Sdump(res))
	}

	// the textures are gone, a rebuild would fail
	sum, err = newTestTask(cfg, vfs.NewMemory()).Run()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sum.Pyramids["g"]; ok {
		t.Errorf("texture grid rebuilt")
	}
}

func TestCopySupport(t *testing.T) {
	src := t.TempDir()
	for _, p := range []string{"index.html", "full.html", "lib/leaflet.js"} {
		path := filepath.Join(src, p)
		if err := os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(p), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := testConfig(t)
	cfg.CopySupport = true
	cfg.SupportDir = src
	a := testArchive(t)

	sum, err := newTestTask(cfg, a).Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Conflicts) != 0 {
		t.Errorf("conflicts=%v", sum.Conflicts)
	}
	index := filepath.Join(cfg.MapDir(), "index.html")
	if err := os.WriteFile(index, []byte("edited"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum, err = newTestTask(cfg, a).Run()
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Conflicts) != len(feature.SupportAssets) {
		t.Errorf("%d conflicts; expected %d", len(sum.Conflicts), len(feature.SupportAssets))
	}
	for _, c := range sum.Conflicts {
		if !errors.Is(c, feature.ErrOutputConflict) {
			t.Errorf("conflict %v is not ErrOutputConflict", c)
		}
	}
	if data, _ := os.ReadFile(index); string(data) != "edited" {
		t.Errorf("index.html overwritten: %q", data)
	}
}
