// Package scene extracts map features from scene property trees.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/rtpc"
	"github.com/RyMaxim/deca/translate"
)

// ErrMissingProperty is returned for a recognized node that lacks a property
// its extraction needs. Only that node is abandoned.
var ErrMissingProperty = errors.New("missing required property")

// ErrNonFinite is returned for a node whose position projects to NaN or
// infinity. The viewer data cannot hold such a point, so the node is dropped.
var ErrNonFinite = errors.New("non-finite map position")

type Kind int

const (
	Unrecognized Kind = iota
	Point
	Region
)

func (k Kind) String() string {
	switch k {
	case Point:
		return "point"
	case Region:
		return "region"
	}
	return "unrecognized"
}

// RegionClass marks polygon regions.
const RegionClass = feature.Regions

// PointClasses are the classes extracted as point features, in output order.
var PointClasses = []string{
	"CLootCrateSpawnPoint",
	"CLootCrateSpawnPointGroup",
	"CPlayerSpawnPoint",
	"CCollectable",
	"CBookMark",
	"CPOI",
}

// RefinedCategories are "<class>.<comment>" buckets that points with a
// matching comment are filed under instead of their class bucket.
var RefinedCategories = []string{
	"CPOI.nest_marker_poi",
}

type Config struct {
	PointClasses      []string
	RefinedCategories []string
	Transform         coord.Transform
	Translations      translate.Table
	Log               logrus.FieldLogger
}

func DefaultConfig() Config {
	return Config{
		PointClasses:      PointClasses,
		RefinedCategories: RefinedCategories,
		Transform:         coord.Default(),
		Translations:      translate.Table{},
		Log:               logrus.StandardLogger(),
	}
}

type Visitor struct {
	kinds   map[string]Kind
	refined map[string]bool
	xf      coord.Transform
	tr      translate.Table
	log     logrus.FieldLogger
	buckets *feature.Buckets

	// Failed counts nodes abandoned because of missing properties.
	Failed int
}

func NewVisitor(cfg Config) *Visitor {
	if cfg.Log == nil {
		cfg.Log = logrus.StandardLogger()
	}
	v := &Visitor{
		kinds:   map[string]Kind{RegionClass: Region},
		refined: make(map[string]bool),
		xf:      cfg.Transform,
		tr:      cfg.Translations,
		log:     cfg.Log,
		buckets: feature.NewBuckets(RegionClass),
	}
	for _, c := range cfg.PointClasses {
		v.kinds[c] = Point
		v.buckets.Register(c)
	}
	for _, r := range cfg.RefinedCategories {
		v.refined[r] = true
		v.buckets.Register(r)
	}
	return v
}

func (v *Visitor) Buckets() *feature.Buckets {
	return v.buckets
}

func (v *Visitor) Classify(class string) Kind {
	return v.kinds[class]
}

// Visit processes every node of the tree. Node failures are logged and
// counted, they do not stop the walk.
func (v *Visitor) Visit(root *rtpc.Node) {
	root.Visit(func(n *rtpc.Node) {
		if err := v.Process(n); err != nil {
			v.Failed++
			v.log.WithError(err).Warn("scene node skipped")
		}
	})
}

// Process extracts the feature of a single node, if it has one.
func (v *Visitor) Process(n *rtpc.Node) error {
	class, ok := n.String(rtpc.PropClassName)
	if !ok {
		return nil
	}

	var (
		f   *geojson.Feature
		key string
		err error
	)
	switch v.Classify(class) {
	case Point:
		f, key, err = v.point(n, class)
	case Region:
		f, err = v.region(n, class)
		key = RegionClass
	default:
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "%s node", class)
	}
	v.buckets.Add(key, f)
	return nil
}

func (v *Visitor) point(n *rtpc.Node, class string) (*geojson.Feature, string, error) {
	m, err := worldMatrix(n)
	if err != nil {
		return nil, "", err
	}
	loc := v.xf.ToMap(float64(m.At(0, 3)), float64(m.At(2, 3)))
	if !coord.Finite(loc) {
		return nil, "", errors.Wrapf(ErrNonFinite, "%v", loc)
	}

	props := feature.PointProps{Class: class}
	key := class
	if comment, ok := n.String(rtpc.PropClassComment); ok {
		props.Comment = &comment
		if refined := fmt.Sprintf("%s.%s", class, comment); v.refined[refined] {
			key = refined
		}
	}
	if uid, ok := n.Uint64(rtpc.PropInstanceUID); ok {
		props.UID = &uid
	}
	if name, ok := n.String(rtpc.PropPOIName); ok {
		props.POIName = &feature.Translated{Key: name, Text: v.tr.Lookup(name)}
	}
	if desc, ok := n.String(rtpc.PropPOIDesc); ok {
		props.POIDesc = &feature.Translated{Key: desc, Text: v.tr.Lookup(desc)}
	}
	if bookmark, ok := n.String(rtpc.PropBookmarkName); ok {
		props.BookmarkName = &bookmark
	}
	if loot, ok := n.String(rtpc.PropLootClass); ok {
		props.LootClass = &loot
	}

	return feature.NewPoint(props, loc), key, nil
}

func (v *Visitor) region(n *rtpc.Node, class string) (*geojson.Feature, error) {
	m, err := worldMatrix(n)
	if err != nil {
		return nil, err
	}
	if !n.Has(rtpc.PropRegionBorder) {
		return nil, errors.Wrap(ErrMissingProperty, "border")
	}
	border, ok := n.Floats(rtpc.PropRegionBorder)
	if !ok {
		return nil, errors.New("border is not a number list")
	}
	if len(border)%4 != 0 {
		return nil, errors.Errorf("border has %d values, not a multiple of 4", len(border))
	}

	xz := make([][2]float64, 0, len(border)/4)
	for i := 0; i < len(border); i += 4 {
		p := m.Mul4x1(mgl32.Vec4{border[i], border[i+1], border[i+2], 1})
		xz = append(xz, [2]float64{float64(p.X()), float64(p.Z())})
	}

	ring := v.xf.Ring(xz)
	for _, p := range ring {
		if !coord.Finite(p) {
			return nil, errors.Wrapf(ErrNonFinite, "border point %v", p)
		}
	}

	props := feature.AreaProps{Class: class}
	props.UID, _ = n.Uint64(rtpc.PropInstanceUID)
	props.Comment, _ = n.String(rtpc.PropClassComment)
	return feature.NewPolygon(props, ring), nil
}

// worldMatrix reads the node's column major world transform.
func worldMatrix(n *rtpc.Node) (mgl32.Mat4, error) {
	var m mgl32.Mat4
	data, ok := n.Floats(rtpc.PropWorldMatrix)
	if !ok {
		return m, errors.Wrap(ErrMissingProperty, "world transform")
	}
	if len(data) != 16 {
		return m, errors.Wrapf(ErrMissingProperty, "world transform has %d values", len(data))
	}
	copy(m[:], data)
	return m, nil
}
