package pyramid

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/paulmach/orb/maptile"
)

// DefaultTemplate addresses tiles as level/x/y.
const DefaultTemplate = "{z}/{x}/{y}.png"

// Layout places the tiles of one pyramid below Root.
type Layout struct {
	Root     string
	Template string
}

// TilePath 获取瓦片路径
func (l Layout) TilePath(t maptile.Tile) string {
	tmpl := l.Template
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	p := strings.Replace(tmpl, "{x}", strconv.Itoa(int(t.X)), -1)
	p = strings.Replace(p, "{y}", strconv.Itoa(int(t.Y)), -1)
	p = strings.Replace(p, "{z}", strconv.Itoa(int(t.Z)), -1)
	return filepath.Join(l.Root, filepath.FromSlash(p))
}

// LevelDir is the directory holding every tile of level z.
func (l Layout) LevelDir(z maptile.Zoom) string {
	return filepath.Join(l.Root, strconv.Itoa(int(z)))
}

// FullPath is where the unsliced source image is kept.
func (l Layout) FullPath() string {
	return filepath.Join(l.Root, "full.png")
}
