package vfs

import (
	"bytes"
	"io"
	"io/ioutil"
	"sort"

	"github.com/pkg/errors"

	"github.com/RyMaxim/deca/utils"
)

// Memory is an archive held in memory, keyed by virtual path.
type Memory struct {
	files map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{files: make(map[string][]byte)}
}

// Add stores data under vpath, replacing any previous content.
func (m *Memory) Add(vpath string, data []byte) {
	m.files[vpath] = data
}

func (m *Memory) Lookup(vpath string) []Node {
	data, ok := m.files[vpath]
	if !ok {
		return nil
	}
	return []Node{{
		VPath: vpath,
		Hash:  uint64(utils.HashString(vpath)),
		Size:  int64(len(data)),
	}}
}

func (m *Memory) Open(n Node) (io.ReadCloser, error) {
	data, ok := m.files[n.VPath]
	if !ok {
		return nil, errors.Wrapf(ErrResourceNotFound, "%q", n.VPath)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

func (m *Memory) Paths() []string {
	paths := make([]string, 0, len(m.files))
	for vpath := range m.files {
		paths = append(paths, vpath)
	}
	sort.Strings(paths)
	return paths
}
