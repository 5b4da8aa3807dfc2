package pyramid

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/paulmach/orb/maptile"
)

// A level counts as built once its directory exists. Levels are written to a
// scratch directory and renamed into place when complete, so an interrupted
// run never leaves a half written level behind the check.

func levelDone(l Layout, z maptile.Zoom) bool {
	info, err := os.Stat(l.LevelDir(z))
	return err == nil && info.IsDir()
}

func scratchLayout(l Layout, z maptile.Zoom) Layout {
	return Layout{
		Root:     filepath.Join(l.Root, ".partial-"+strconv.Itoa(int(z))),
		Template: l.Template,
	}
}

func commitLevel(l Layout, z maptile.Zoom) error {
	scratch := scratchLayout(l, z)
	return os.Rename(scratch.LevelDir(z), l.LevelDir(z))
}

func cleanScratch(l Layout, z maptile.Zoom) error {
	return os.RemoveAll(scratchLayout(l, z).Root)
}
