package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/RyMaxim/deca/bitmask"
	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/webmap"
)

var conf *Conf

type Conf struct {
	App struct {
		Version string `mapstructure:"version"`
		Title   string `mapstructure:"title"`
	} `mapstructure:"app"`
	Output struct {
		Directory      string `mapstructure:"directory"`
		LogDir         string `mapstructure:"logDir"`
		OutputTerminal bool   `mapstructure:"outputTerminal"`
		CopySupport    bool   `mapstructure:"copySupport"`
		SupportDir     string `mapstructure:"supportDir"`
	} `mapstructure:"output"`
	Archive struct {
		Root string `mapstructure:"root"`
		// TextureExt replaces the .ddsc extension of texture paths, for
		// archives whose textures were converted on extraction.
		TextureExt string `mapstructure:"textureExt"`
	} `mapstructure:"archive"`
	Tiles struct {
		TileSize int    `mapstructure:"tileSize"`
		MaxZoom  int    `mapstructure:"maxZoom"`
		Template string `mapstructure:"template"`
		Progress bool   `mapstructure:"progress"`
	} `mapstructure:"tiles"`
	Calibration struct {
		ScaleX  float64 `mapstructure:"scaleX"`
		ScaleY  float64 `mapstructure:"scaleY"`
		OffsetX float64 `mapstructure:"offsetX"`
		OffsetY float64 `mapstructure:"offsetY"`
	} `mapstructure:"calibration"`
	Paths struct {
		Translation  string `mapstructure:"translation"`
		Collection   string `mapstructure:"collection"`
		SceneSuffix  string `mapstructure:"sceneSuffix"`
		BoundsSuffix string `mapstructure:"boundsSuffix"`
	} `mapstructure:"paths"`
	Scene struct {
		PointClasses      []string `mapstructure:"pointClasses"`
		RefinedCategories []string `mapstructure:"refinedCategories"`
	} `mapstructure:"scene"`
	Rasters []RasterConf `mapstructure:"rasters"`
}

// RasterConf 栅格图层配置
type RasterConf struct {
	Name  string `mapstructure:"name"`
	Kind  string `mapstructure:"kind"`
	Path  string `mapstructure:"path"`
	Grid  int    `mapstructure:"grid"`
	Size  int    `mapstructure:"size"`
	Color string `mapstructure:"color"`
	Flip  bool   `mapstructure:"flip"`
}

// InitConf 初始化配置
func InitConf(cfgFile string) {
	if cfgFile == "" {
		cfgFile = "conf.toml"
	}
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Printf("config file(%s) not exist", cfgFile)
		os.Exit(1)
	}
	viper.SetConfigType("toml")
	viper.SetConfigFile(cfgFile)
	viper.AutomaticEnv() // read in environment variables that match
	if err := viper.ReadInConfig(); err != nil {
		fmt.Printf("read config file(%s) error, details: %s", viper.ConfigFileUsed(), err)
		os.Exit(1)
	}
	// 设置默认值
	def := webmap.DefaultConfig()
	viper.SetDefault("app.version", "v 0.1.0")
	viper.SetDefault("app.title", "Web Map Builder")
	viper.SetDefault("output.directory", ".")
	viper.SetDefault("output.outputTerminal", true)
	viper.SetDefault("output.supportDir", def.SupportDir)
	viper.SetDefault("archive.root", "archive")
	viper.SetDefault("tiles.tileSize", def.TileSize)
	viper.SetDefault("tiles.maxZoom", def.MaxZoom)
	viper.SetDefault("tiles.template", def.TileTemplate)
	viper.SetDefault("calibration.scaleX", def.Transform.ScaleX)
	viper.SetDefault("calibration.scaleY", def.Transform.ScaleY)
	viper.SetDefault("calibration.offsetX", def.Transform.OffsetX)
	viper.SetDefault("calibration.offsetY", def.Transform.OffsetY)
	viper.SetDefault("paths.translation", def.TranslationPath)
	viper.SetDefault("paths.collection", def.CollectionPath)
	viper.SetDefault("paths.sceneSuffix", def.SceneSuffix)
	viper.SetDefault("paths.boundsSuffix", def.BoundsSuffix)

	if err := viper.Unmarshal(&conf); err != nil {
		panic("配置文件解析失败")
	}
}

// webmapConfig 将配置转换为任务配置
func (c *Conf) webmapConfig() (webmap.Config, error) {
	cfg := webmap.DefaultConfig()
	cfg.WorkDir = c.Output.Directory
	cfg.CopySupport = c.Output.CopySupport
	cfg.SupportDir = c.Output.SupportDir
	cfg.TileSize = c.Tiles.TileSize
	cfg.MaxZoom = c.Tiles.MaxZoom
	cfg.TileTemplate = c.Tiles.Template
	cfg.Progress = c.Tiles.Progress
	if cfg.TileSize <= 0 {
		return cfg, errors.Errorf("tiles.tileSize %d is not positive", cfg.TileSize)
	}
	cfg.Transform = coord.Transform{
		ScaleX:  c.Calibration.ScaleX,
		ScaleY:  c.Calibration.ScaleY,
		OffsetX: c.Calibration.OffsetX,
		OffsetY: c.Calibration.OffsetY,
	}
	cfg.TranslationPath = c.Paths.Translation
	cfg.CollectionPath = c.Paths.Collection
	cfg.SceneSuffix = c.Paths.SceneSuffix
	cfg.BoundsSuffix = c.Paths.BoundsSuffix
	cfg.PointClasses = appendMissing(cfg.PointClasses, c.Scene.PointClasses)
	cfg.RefinedCategories = appendMissing(cfg.RefinedCategories, c.Scene.RefinedCategories)

	if len(c.Rasters) > 0 {
		cfg.Rasters = cfg.Rasters[:0:0]
		for _, r := range c.Rasters {
			s, err := r.source()
			if err != nil {
				return cfg, err
			}
			cfg.Rasters = append(cfg.Rasters, s)
		}
	}
	if ext := c.Archive.TextureExt; ext != "" {
		for i, s := range cfg.Rasters {
			if s.Kind == webmap.TextureGrid || s.Kind == webmap.Texture {
				cfg.Rasters[i].Path = strings.TrimSuffix(s.Path, ".ddsc") + ext
			}
		}
	}
	return cfg, nil
}

func (r RasterConf) source() (webmap.RasterSource, error) {
	s := webmap.RasterSource{
		Name:  r.Name,
		Kind:  webmap.SourceKind(r.Kind),
		Path:  r.Path,
		Grid:  r.Grid,
		Size:  r.Size,
		Color: bitmask.White,
		Flip:  r.Flip,
	}
	if r.Name == "" || r.Path == "" {
		return s, errors.Errorf("raster %+v needs a name and a path", r)
	}
	if r.Color != "" {
		c, err := colorful.Hex(r.Color)
		if err != nil {
			return s, errors.Wrapf(err, "raster %q color", r.Name)
		}
		s.Color.R, s.Color.G, s.Color.B = c.RGB255()
	}
	return s, nil
}

func appendMissing(base, extra []string) []string {
	out := append([]string(nil), base...)
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
