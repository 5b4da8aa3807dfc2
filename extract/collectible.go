// Package extract reads point and area features straight from structured
// records, outside the scene trees.
package extract

import (
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"

	"github.com/RyMaxim/deca/adf"
	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/translate"
	"github.com/RyMaxim/deca/vfs"
)

// CollectionPath is the collectible table of the game.
const CollectionPath = "global/collection.collectionc"

// CollectibleName resolves the display name of a collectible id: the id
// itself, then id_name, then the id_name key verbatim.
func CollectibleName(tr translate.Table, id string) string {
	if name, ok := tr.Get(id); ok {
		return name
	}
	return tr.Lookup(id + "_name")
}

// CollectibleDesc resolves id_desc, falling back to the key.
func CollectibleDesc(tr translate.Table, id string) string {
	return tr.Lookup(id + "_desc")
}

// Collectibles converts the Collectibles table of rec to point features.
func Collectibles(rec *adf.Record, xf coord.Transform, tr translate.Table) ([]*geojson.Feature, error) {
	inst, err := rec.Instance(0)
	if err != nil {
		return nil, err
	}
	items, err := inst.Structs("Collectibles")
	if err != nil {
		return nil, err
	}

	features := make([]*geojson.Feature, 0, len(items))
	for i, item := range items {
		uid, err := item.Uint64("ID")
		if err != nil {
			return nil, errors.Wrapf(err, "collectible %d", i)
		}
		id, err := item.String("Name")
		if err != nil {
			return nil, errors.Wrapf(err, "collectible %d", i)
		}
		pos, err := item.Floats("Position")
		if err != nil {
			return nil, errors.Wrapf(err, "collectible %q", id)
		}
		if len(pos) < 3 {
			return nil, errors.Wrapf(adf.ErrMalformedRecord, "collectible %q position has %d values", id, len(pos))
		}

		features = append(features, feature.NewPoint(feature.CollectableProps{
			UID:      uid,
			ID:       id,
			Name:     CollectibleName(tr, id),
			Desc:     CollectibleDesc(tr, id),
			Position: pos,
		}, xf.ToMap(pos[0], pos[2])))
	}
	return features, nil
}

// LoadCollectibles reads and converts the collectible table at vpath.
func LoadCollectibles(a vfs.Archive, dec adf.Decoder, vpath string, xf coord.Transform, tr translate.Table) ([]*geojson.Feature, error) {
	_, data, err := vfs.ReadFirst(a, vpath)
	if err != nil {
		return nil, err
	}
	rec, err := dec.Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %q", vpath)
	}
	features, err := Collectibles(rec, xf, tr)
	return features, errors.Wrapf(err, "%q", vpath)
}
