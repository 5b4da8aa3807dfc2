package vfs

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/RyMaxim/deca/utils"
)

// Directory serves an archive that was extracted to disk. The virtual path of
// a file is its slash separated path relative to the root.
type Directory struct {
	root  string
	nodes map[string][]Node
	paths []string
}

func NewDirectory(root string) (*Directory, error) {
	d := &Directory{
		root:  root,
		nodes: make(map[string][]Node),
	}
	err := filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		vpath := filepath.ToSlash(rel)
		d.nodes[vpath] = append(d.nodes[vpath], Node{
			VPath: vpath,
			Hash:  uint64(utils.HashString(vpath)),
			Size:  info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "index archive directory '%s'", root)
	}

	for vpath := range d.nodes {
		d.paths = append(d.paths, vpath)
	}
	sort.Strings(d.paths)
	return d, nil
}

func (d *Directory) Lookup(vpath string) []Node {
	return d.nodes[vpath]
}

func (d *Directory) Open(n Node) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(d.root, filepath.FromSlash(n.VPath)))
	if err != nil {
		return nil, errors.Wrapf(err, "os.Open('%s')", n.VPath)
	}
	return f, nil
}

func (d *Directory) Paths() []string {
	return d.paths
}
