// Package rtpc holds decoded scene property trees. Every node carries a map of
// properties keyed by the lookup3 hash of the property name.
package rtpc

import (
	"github.com/pkg/errors"

	"github.com/RyMaxim/deca/utils"
)

var ErrMalformedRecord = errors.New("malformed scene record")

// Well known property hashes.
var (
	PropClassName    = utils.HashString("_class")
	PropClassComment = utils.HashString("_comment")
	PropInstanceUID  = utils.HashString("_object_id")
	PropRegionBorder = utils.HashString("border")
	PropBookmarkName = utils.HashString("bookmark_name")
	PropPOIName      = utils.HashString("name")
	PropPOIDesc      = utils.HashString("tooltip")
	PropWorldMatrix  = uint32(0x6ca6d4b9)
	PropLootClass    = uint32(0x34beec18)
)

type Decoder interface {
	Decode(data []byte) (*Node, error)
}

// Property is a typed property value: string, uint64 or []float32.
type Property struct {
	Data interface{}
}

type Node struct {
	Props    map[uint32]Property
	Children []*Node
}

// Visit calls fn for n and then for every descendant, depth first.
func (n *Node) Visit(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Visit(fn)
	}
}

func (n *Node) Has(h uint32) bool {
	_, ok := n.Props[h]
	return ok
}

func (n *Node) String(h uint32) (string, bool) {
	p, ok := n.Props[h]
	if !ok {
		return "", false
	}
	switch v := p.Data.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	}
	return "", false
}

func (n *Node) Uint64(h uint32) (uint64, bool) {
	p, ok := n.Props[h]
	if !ok {
		return 0, false
	}
	switch v := p.Data.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	}
	return 0, false
}

func (n *Node) Floats(h uint32) ([]float32, bool) {
	p, ok := n.Props[h]
	if !ok {
		return nil, false
	}
	v, ok := p.Data.([]float32)
	return v, ok
}
