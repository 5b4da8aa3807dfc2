package extract

import (
	"regexp"

	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/RyMaxim/deca/adf"
	"github.com/RyMaxim/deca/coord"
	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/vfs"
)

// BoundsFeature turns the AABB of a model record into a rectangle on the
// X-Z plane.
func BoundsFeature(n vfs.Node, rec *adf.Record, xf coord.Transform) (*geojson.Feature, error) {
	inst, err := rec.Instance(0)
	if err != nil {
		return nil, err
	}
	aabb, err := inst.Floats("AABB")
	if err != nil {
		return nil, err
	}
	if len(aabb) != 6 {
		return nil, errors.Wrapf(adf.ErrMalformedRecord, "AABB has %d values", len(aabb))
	}
	min, max := aabb[0:3], aabb[3:6]

	ring := xf.Ring([][2]float64{
		{min[0], min[2]},
		{max[0], min[2]},
		{max[0], max[2]},
		{min[0], max[2]},
	})
	return feature.NewPolygon(feature.AreaProps{
		Class:     feature.Bounds,
		UID:       n.Hash,
		UIDString: n.VPath,
	}, ring), nil
}

// Bounds scans every resource matching expr and returns its bounding box.
func Bounds(a vfs.Archive, dec adf.Decoder, expr *regexp.Regexp, xf coord.Transform, log logrus.FieldLogger) ([]*geojson.Feature, error) {
	var features []*geojson.Feature
	err := vfs.Scan(a, expr, func(n vfs.Node) error {
		log.WithField("path", n.VPath).Debug("PROCESSING")
		data, err := vfs.ReadNode(a, n)
		if err != nil {
			return err
		}
		rec, err := dec.Decode(data)
		if err != nil {
			return errors.Wrapf(err, "decode %q", n.VPath)
		}
		f, err := BoundsFeature(n, rec, xf)
		if err != nil {
			return errors.Wrapf(err, "%q", n.VPath)
		}
		features = append(features, f)
		return nil
	})
	return features, err
}
