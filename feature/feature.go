// Package feature holds the map overlay features produced by the extractors
// and writes them out as viewer data files.
package feature

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Properties is implemented by the typed property sets of each feature
// family. Only populated fields are emitted.
type Properties interface {
	Properties() geojson.Properties
}

func NewPoint(props Properties, loc orb.Point) *geojson.Feature {
	f := geojson.NewFeature(loc)
	f.Properties = props.Properties()
	return f
}

func NewPolygon(props Properties, ring orb.Ring) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{ring})
	f.Properties = props.Properties()
	return f
}

// UIDString formats an instance id the way the viewer displays it.
func UIDString(uid uint64) string {
	return fmt.Sprintf("0x%012X", uid)
}

// Translated is a source string and its localized text.
type Translated struct {
	Key  string
	Text string
}

// PointProps describes a placed scene object. Nil fields were absent on the
// source node.
type PointProps struct {
	Class        string
	Comment      *string
	UID          *uint64
	POIName      *Translated
	POIDesc      *Translated
	BookmarkName *string
	LootClass    *string
}

func (p PointProps) Properties() geojson.Properties {
	props := geojson.Properties{"type": p.Class}
	if p.Comment != nil {
		props["comment"] = *p.Comment
	}
	if p.UID != nil {
		props["uid"] = *p.UID
		props["uid_str"] = UIDString(*p.UID)
	}
	if p.POIName != nil {
		props["poi_name"] = p.POIName.Key
		props["poi_name_tr"] = p.POIName.Text
	}
	if p.POIDesc != nil {
		props["poi_desc"] = p.POIDesc.Key
		props["poi_desc_tr"] = p.POIDesc.Text
	}
	if p.BookmarkName != nil {
		props["bookmark_name"] = *p.BookmarkName
	}
	if p.LootClass != nil {
		props["loot_class"] = *p.LootClass
	}
	return props
}

// AreaProps describes regions and bounding boxes. UIDString overrides the
// formatted uid when set.
type AreaProps struct {
	Class     string
	UID       uint64
	UIDString string
	Comment   string
}

func (p AreaProps) Properties() geojson.Properties {
	uidStr := p.UIDString
	if uidStr == "" {
		uidStr = UIDString(p.UID)
	}
	return geojson.Properties{
		"type":    p.Class,
		"uid":     p.UID,
		"uid_str": uidStr,
		"comment": p.Comment,
	}
}

// CollectableType is the type tag of collection table entries.
const CollectableType = "collection.collectionc"

type CollectableProps struct {
	UID      uint64
	ID       string
	Name     string
	Desc     string
	Position []float64
}

func (p CollectableProps) Properties() geojson.Properties {
	return geojson.Properties{
		"type":                CollectableType,
		"uid":                 p.UID,
		"uid_str":             UIDString(p.UID),
		"collectable_id":      p.ID,
		"collectable_name_tr": p.Name,
		"collectable_desc_tr": p.Desc,
		"position":            p.Position,
	}
}
