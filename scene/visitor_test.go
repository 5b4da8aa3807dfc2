package scene

import (
	"bytes"
	"math"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/paulmach/orb"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/RyMaxim/deca/feature"
	"github.com/RyMaxim/deca/rtpc"
	"github.com/RyMaxim/deca/translate"
)

func identity() []float32 {
	return []float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

func translation(x, y, z float32) []float32 {
	m := identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

func node(class string, props map[uint32]interface{}) *rtpc.Node {
	n := &rtpc.Node{Props: map[uint32]rtpc.Property{
		rtpc.PropClassName: {Data: class},
	}}
	for h, v := range props {
		n.Props[h] = rtpc.Property{Data: v}
	}
	return n
}

func testVisitor(tr translate.Table) *Visitor {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	cfg := DefaultConfig()
	cfg.Log = log
	cfg.Translations = tr
	return NewVisitor(cfg)
}

func TestClassify(t *testing.T) {
	v := testVisitor(nil)
	tests := []struct {
		class string
		kind  Kind
	}{
		{"CPOI", Point},
		{"CPlayerSpawnPoint", Point},
		{"CRegion", Region},
		{"CStaticMesh", Unrecognized},
		{"", Unrecognized},
	}
	for _, test := range tests {
		if k := v.Classify(test.class); k != test.kind {
			t.Errorf("Classify(%q)=%v; expected %v", test.class, k, test.kind)
		}
	}
}

func TestCategoryRouting(t *testing.T) {
	v := testVisitor(nil)
	root := &rtpc.Node{Children: []*rtpc.Node{
		node("CPOI", map[uint32]interface{}{
			rtpc.PropWorldMatrix:  identity(),
			rtpc.PropClassComment: "nest_marker_poi",
		}),
		node("CPOI", map[uint32]interface{}{
			rtpc.PropWorldMatrix:  identity(),
			rtpc.PropClassComment: "lookout",
		}),
		node("CBookMark", map[uint32]interface{}{
			rtpc.PropWorldMatrix:  identity(),
			rtpc.PropClassComment: "nest_marker_poi",
		}),
	}}
	v.Visit(root)

	b := v.Buckets()
	if n := len(b.Get("CPOI.nest_marker_poi")); n != 1 {
		t.Errorf("CPOI.nest_marker_poi has %d features; expected 1", n)
	}
	if n := len(b.Get("CPOI")); n != 1 {
		t.Errorf("CPOI has %d features; expected 1", n)
	}
	if n := len(b.Get("CBookMark")); n != 1 {
		t.Errorf("CBookMark has %d features; expected 1", n)
	}
	if c := b.Get("CPOI")[0].Properties["comment"]; c != "lookout" {
		t.Errorf("CPOI comment=%v", c)
	}
}

func TestPointExtraction(t *testing.T) {
	tr := translate.Table{"poi_lake": "Silver Lake"}
	v := testVisitor(tr)
	n := node("CPOI", map[uint32]interface{}{
		rtpc.PropWorldMatrix:  translation(8192, 55, -8192),
		rtpc.PropInstanceUID:  uint64(0xdeadbeef),
		rtpc.PropPOIName:      "poi_lake",
		rtpc.PropPOIDesc:      "poi_lake_desc",
		rtpc.PropBookmarkName: "camp",
		rtpc.PropLootClass:    "rare",
	})
	if err := v.Process(n); err != nil {
		t.Fatal(err)
	}

	f := v.Buckets().Get("CPOI")[0]
	if p := f.Point(); p != (orb.Point{192, -64}) {
		t.Errorf("point=%v; expected [192 -64]", p)
	}
	expected := map[string]interface{}{
		"type":          "CPOI",
		"uid":           uint64(0xdeadbeef),
		"uid_str":       "0x0000DEADBEEF",
		"poi_name":      "poi_lake",
		"poi_name_tr":   "Silver Lake",
		"poi_desc":      "poi_lake_desc",
		"poi_desc_tr":   "poi_lake_desc",
		"bookmark_name": "camp",
		"loot_class":    "rare",
	}
	if len(f.Properties) != len(expected) {
		t.Errorf("properties: %s", spew.Sdump(f.Properties))
	}
	for k, want := range expected {
		if f.Properties[k] != want {
			t.Errorf("properties[%q]=%v; expected %v", k, f.Properties[k], want)
		}
	}
}

func TestRegionExtraction(t *testing.T) {
	v := testVisitor(nil)
	square := []float32{
		0, 0, 0, 0,
		1, 0, 0, 0,
		1, 0, 1, 0,
		0, 0, 1, 0,
	}
	n := node("CRegion", map[uint32]interface{}{
		rtpc.PropWorldMatrix:  translation(16384, 0, 0),
		rtpc.PropRegionBorder: square,
	})
	if err := v.Process(n); err != nil {
		t.Fatal(err)
	}

	regions := v.Buckets().Get(feature.Regions)
	if len(regions) != 1 {
		t.Fatalf("regions=%d", len(regions))
	}
	poly, ok := regions[0].Geometry.(orb.Polygon)
	if !ok || len(poly) != 1 || len(poly[0]) != 4 {
		t.Fatalf("geometry: %s", spew.Sdump(regions[0].Geometry))
	}
	s := 128.0 / 16384
	expected := orb.Ring{{256, -128}, {256 + s, -128}, {256 + s, -128 - s}, {256, -128 - s}}
	for i := range expected {
		if poly[0][i] != expected[i] {
			t.Errorf("ring[%d]=%v; expected %v", i, poly[0][i], expected[i])
		}
	}
	props := regions[0].Properties
	if props["uid"] != uint64(0) || props["comment"] != "" || props["uid_str"] != "0x000000000000" {
		t.Errorf("region defaults: %v", props)
	}
}

func TestMissingTransformSkipsNodeOnly(t *testing.T) {
	v := testVisitor(nil)
	bad := node("CPlayerSpawnPoint", nil)
	root := &rtpc.Node{Children: []*rtpc.Node{
		bad,
		node("CRegion", map[uint32]interface{}{rtpc.PropWorldMatrix: identity()}),
		node("CPlayerSpawnPoint", map[uint32]interface{}{rtpc.PropWorldMatrix: identity()}),
	}}
	v.Visit(root)

	if v.Failed != 2 {
		t.Errorf("Failed=%d; expected 2", v.Failed)
	}
	if n := len(v.Buckets().Get("CPlayerSpawnPoint")); n != 1 {
		t.Errorf("CPlayerSpawnPoint has %d features; expected 1", n)
	}
	if err := v.Process(bad); !errors.Is(err, ErrMissingProperty) {
		t.Errorf("Process(no transform) err=%v; expected ErrMissingProperty", err)
	}
}

func TestIgnoredNodes(t *testing.T) {
	v := testVisitor(nil)
	noClass := &rtpc.Node{Props: map[uint32]rtpc.Property{}}
	other := node("CStaticMesh", nil)
	for _, n := range []*rtpc.Node{noClass, other} {
		if err := v.Process(n); err != nil {
			t.Errorf("Process=%v; expected nil", err)
		}
	}
	for _, k := range v.Buckets().Keys() {
		if len(v.Buckets().Get(k)) != 0 {
			t.Errorf("bucket %q not empty", k)
		}
	}
}

func TestConfiguredClasses(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PointClasses = append([]string{"CAnimalSpawnPoint"}, PointClasses...)
	cfg.RefinedCategories = []string{"CAnimalSpawnPoint.deer"}
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	cfg.Log = log
	v := NewVisitor(cfg)

	err := v.Process(node("CAnimalSpawnPoint", map[uint32]interface{}{
		rtpc.PropWorldMatrix:  identity(),
		rtpc.PropClassComment: "deer",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if n := len(v.Buckets().Get("CAnimalSpawnPoint.deer")); n != 1 {
		t.Errorf("refined bucket has %d features", n)
	}
}

func TestNonFinitePositionSkipsNodeOnly(t *testing.T) {
	v := testVisitor(nil)
	nan := node("CPOI", map[uint32]interface{}{
		rtpc.PropWorldMatrix: translation(float32(math.NaN()), 0, 0),
	})
	inf := node("CRegion", map[uint32]interface{}{
		rtpc.PropWorldMatrix:  translation(float32(math.Inf(1)), 0, 0),
		rtpc.PropRegionBorder: []float32{0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 0},
	})
	root := &rtpc.Node{Children: []*rtpc.Node{
		nan,
		inf,
		node("CPOI", map[uint32]interface{}{rtpc.PropWorldMatrix: identity()}),
	}}
	v.Visit(root)

	if v.Failed != 2 {
		t.Errorf("Failed=%d; expected 2", v.Failed)
	}
	for _, n := range []*rtpc.Node{nan, inf} {
		if err := v.Process(n); !errors.Is(err, ErrNonFinite) {
			t.Errorf("Process err=%v; expected ErrNonFinite", err)
		}
	}
	if n := len(v.Buckets().Get("CPOI")); n != 1 {
		t.Errorf("CPOI has %d features; expected 1", n)
	}

	var out bytes.Buffer
	b := v.Buckets()
	if err := feature.WriteVars(&out, b, b.Keys()); err != nil {
		t.Fatalf("WriteVars: %v", err)
	}
	if !bytes.Contains(out.Bytes(), []byte("var c_poi = ")) {
		t.Errorf("output=%s", out.String())
	}
}

func TestBorderRequired(t *testing.T) {
	v := testVisitor(nil)
	n := node("CRegion", map[uint32]interface{}{rtpc.PropWorldMatrix: identity()})
	if err := v.Process(n); !errors.Is(err, ErrMissingProperty) {
		t.Errorf("Process(no border) err=%v; expected ErrMissingProperty", err)
	}
	n = node("CRegion", map[uint32]interface{}{
		rtpc.PropWorldMatrix:  identity(),
		rtpc.PropRegionBorder: "square",
	})
	if err := v.Process(n); err == nil || errors.Is(err, ErrMissingProperty) {
		t.Errorf("Process(string border) err=%v", err)
	}
}
