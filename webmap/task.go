// Package webmap drives the web map build: tile pyramids for every raster
// layer, then the feature data files for the viewer.
package webmap

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"

	"github.com/RyMaxim/deca/adf"
	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/extract"
	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/pyramid"
	"github.com/RyMaxim/deca/rtpc"
	"github.com/RyMaxim/deca/scene"
	"github.com/RyMaxim/deca/texture"
	"github.com/RyMaxim/deca/translate"
	"github.com/RyMaxim/deca/vfs"
)

// Config holds everything a run needs. Empty paths and suffixes disable the
// matching step.
type Config struct {
	WorkDir      string
	TileSize     int
	MaxZoom      int
	TileTemplate string
	Progress     bool

	Transform coord.Transform
	Rasters   []RasterSource

	TranslationPath string
	CollectionPath  string
	SceneSuffix     string
	BoundsSuffix    string

	PointClasses      []string
	RefinedCategories []string

	CopySupport bool
	SupportDir  string
}

func DefaultConfig() Config {
	return Config{
		WorkDir:           ".",
		TileSize:          pyramid.TileSize,
		MaxZoom:           -1,
		TileTemplate:      pyramid.DefaultTemplate,
		Transform:         coord.Default(),
		Rasters:           DefaultRasters(),
		TranslationPath:   "text/master_eng.stringlookup",
		CollectionPath:    extract.CollectionPath,
		SceneSuffix:       "blo",
		BoundsSuffix:      "mdic",
		PointClasses:      scene.PointClasses,
		RefinedCategories: scene.RefinedCategories,
		SupportDir:        filepath.Join("tool_resources", "make_web_map"),
	}
}

// MapDir is where tiles and data files are written.
func (c Config) MapDir() string {
	return filepath.Join(c.WorkDir, "map", "z0")
}

// Task 地图生成任务
type Task struct {
	ID       string
	cfg      Config
	archive  vfs.Archive
	records  adf.Decoder
	scenes   rtpc.Decoder
	textures texture.Decoder
	log      logrus.FieldLogger
}

// Summary reports a finished run.
type Summary struct {
	Pyramids map[string]*pyramid.Result
	Counts   map[string]int
	// FailedNodes counts scene nodes abandoned for missing properties.
	FailedNodes int
	Conflicts   []error
}

// NewTask 创建任务
func NewTask(cfg Config, archive vfs.Archive, records adf.Decoder, scenes rtpc.Decoder, textures texture.Decoder, log logrus.FieldLogger) *Task {
	if log == nil {
		log = logrus.StandardLogger()
	}
	id, _ := shortid.Generate()
	return &Task{
		ID:       id,
		cfg:      cfg,
		archive:  archive,
		records:  records,
		scenes:   scenes,
		textures: textures,
		log:      log.WithField("task", id),
	}
}

// Run executes every step in order and stops at the first fatal error. Tile
// levels finished before a failure stay on disk and are reused next time.
func (t *Task) Run() (*Summary, error) {
	start := time.Now()
	sum := &Summary{
		Pyramids: make(map[string]*pyramid.Result),
		Counts:   make(map[string]int),
	}

	if err := t.buildPyramids(sum); err != nil {
		return sum, err
	}

	tr, err := t.loadTranslations()
	if err != nil {
		return sum, err
	}

	buckets, err := t.collectFeatures(tr, sum)
	if err != nil {
		return sum, err
	}
	for _, k := range buckets.Keys() {
		sum.Counts[k] = len(buckets.Get(k))
		t.log.WithField("bucket", k).Infof("%s: count = %d", k, sum.Counts[k])
	}

	mapDir := t.cfg.MapDir()
	if err := feature.Emit(mapDir, buckets); err != nil {
		return sum, err
	}

	if t.cfg.CopySupport {
		sum.Conflicts, err = feature.CopySupport(t.cfg.SupportDir, mapDir, t.log)
		if err != nil {
			return sum, err
		}
	}

	t.log.Infof("%.3fs finished...", time.Since(start).Seconds())
	return sum, nil
}

func (t *Task) buildPyramids(sum *Summary) error {
	gen := pyramid.NewGenerator(t.log)
	gen.TileSize = t.cfg.TileSize
	gen.MaxZoom = t.cfg.MaxZoom
	gen.Progress = t.cfg.Progress
	if t.cfg.TileTemplate != "" {
		gen.Template = t.cfg.TileTemplate
	}

	for _, s := range t.cfg.Rasters {
		dir := filepath.Join(t.cfg.MapDir(), s.DirName())
		log := t.log.WithFields(logrus.Fields{"source": s.Name, "path": dir})

		// stitching the texture grid is slow, so it only ever happens once
		if s.Kind == TextureGrid {
			if _, err := os.Stat(dir); err == nil {
				log.Info("tile directory exists, skipping")
				continue
			}
		}

		img, err := t.loadRaster(s)
		if err != nil {
			return errors.Wrapf(err, "raster %q", s.Name)
		}
		log.Info("building tiles")
		res, err := gen.Build(img, dir)
		if err != nil {
			return errors.Wrapf(err, "raster %q", s.Name)
		}
		sum.Pyramids[s.Name] = res
	}
	return nil
}

func (t *Task) loadTranslations() (translate.Table, error) {
	if t.cfg.TranslationPath == "" {
		return translate.Table{}, nil
	}
	_, data, err := vfs.ReadFirst(t.archive, t.cfg.TranslationPath)
	if err != nil {
		return nil, err
	}
	tr, err := translate.Decode(data)
	return tr, errors.Wrapf(err, "%q", t.cfg.TranslationPath)
}

func (t *Task) collectFeatures(tr translate.Table, sum *Summary) (*feature.Buckets, error) {
	buckets := feature.NewBuckets(feature.Regions, feature.Collectables, feature.Bounds)

	if t.cfg.CollectionPath != "" {
		collectables, err := extract.LoadCollectibles(t.archive, t.records, t.cfg.CollectionPath, t.cfg.Transform, tr)
		if err != nil {
			return nil, err
		}
		for _, f := range collectables {
			buckets.Add(feature.Collectables, f)
		}
	}

	if t.cfg.BoundsSuffix != "" {
		t.log.Info("PROCESSING: mdics")
		boxes, err := extract.Bounds(t.archive, t.records, vfs.SuffixExpr(t.cfg.BoundsSuffix), t.cfg.Transform, t.log)
		if err != nil {
			return nil, err
		}
		for _, f := range boxes {
			buckets.Add(feature.Bounds, f)
		}
	}

	if t.cfg.SceneSuffix != "" {
		t.log.Info("PROCESSING: blo(s)")
		visitor := scene.NewVisitor(scene.Config{
			PointClasses:      t.cfg.PointClasses,
			RefinedCategories: t.cfg.RefinedCategories,
			Transform:         t.cfg.Transform,
			Translations:      tr,
			Log:               t.log,
		})
		err := vfs.Scan(t.archive, vfs.SuffixExpr(t.cfg.SceneSuffix), func(n vfs.Node) error {
			t.log.WithField("path", n.VPath).Debug("PROCESSING")
			data, err := vfs.ReadNode(t.archive, n)
			if err != nil {
				return err
			}
			root, err := t.scenes.Decode(data)
			if err != nil {
				return errors.Wrapf(err, "decode %q", n.VPath)
			}
			visitor.Visit(root)
			return nil
		})
		if err != nil {
			return nil, err
		}
		buckets.Merge(visitor.Buckets())
		sum.FailedNodes = visitor.Failed
	}

	return buckets, nil
}
