// Package vfs is the read-only view of an extracted game archive: virtual
// paths resolve to nodes, nodes open to byte streams.
package vfs

import (
	"io"
	"io/ioutil"
	"regexp"

	"github.com/pkg/errors"
)

// ErrResourceNotFound is returned when a virtual path resolves to zero nodes.
var ErrResourceNotFound = errors.New("resource not found")

// Node is one stored copy of a virtual path.
type Node struct {
	VPath string
	Hash  uint64
	Size  int64
}

type Archive interface {
	// Lookup returns every node stored under vpath, best candidate first.
	Lookup(vpath string) []Node
	Open(n Node) (io.ReadCloser, error)
	// Paths lists all known virtual paths in sorted order.
	Paths() []string
}

// ReadNode returns the full content of n.
func ReadNode(a Archive, n Node) ([]byte, error) {
	r, err := a.Open(n)
	if err != nil {
		return nil, errors.Wrapf(err, "open %q", n.VPath)
	}
	defer r.Close()

	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %q", n.VPath)
	}
	return data, nil
}

// ReadFirst resolves vpath and reads the first node. A path with no nodes
// yields ErrResourceNotFound.
func ReadFirst(a Archive, vpath string) (Node, []byte, error) {
	nodes := a.Lookup(vpath)
	if len(nodes) == 0 {
		return Node{}, nil, errors.Wrapf(ErrResourceNotFound, "%q", vpath)
	}
	data, err := ReadNode(a, nodes[0])
	return nodes[0], data, err
}

// Scan calls fn with the first node of every path matching expr. Paths that
// resolve to no nodes are skipped.
func Scan(a Archive, expr *regexp.Regexp, fn func(n Node) error) error {
	for _, vpath := range a.Paths() {
		if !expr.MatchString(vpath) {
			continue
		}
		nodes := a.Lookup(vpath)
		if len(nodes) == 0 {
			continue
		}
		if err := fn(nodes[0]); err != nil {
			return err
		}
	}
	return nil
}

// SuffixExpr matches virtual paths ending in suffix.
func SuffixExpr(suffix string) *regexp.Regexp {
	return regexp.MustCompile(`^.*` + regexp.QuoteMeta(suffix) + `$`)
}
