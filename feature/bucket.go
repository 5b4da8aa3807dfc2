package feature

import (
	"github.com/paulmach/orb/geojson"
)

// Bucket keys produced by the extractors.
const (
	Regions      = "CRegion"
	Collectables = "collection.collectionc"
	Bounds       = "mdic"
)

// Buckets groups features by category, keeping scan order inside a bucket
// and first-seen order across buckets.
type Buckets struct {
	keys  []string
	items map[string][]*geojson.Feature
}

// NewBuckets creates buckets with the given keys registered up front, so they
// are emitted even when empty.
func NewBuckets(keys ...string) *Buckets {
	b := &Buckets{items: make(map[string][]*geojson.Feature)}
	for _, k := range keys {
		b.Register(k)
	}
	return b
}

func (b *Buckets) Register(key string) {
	if b.Has(key) {
		return
	}
	b.keys = append(b.keys, key)
	b.items[key] = []*geojson.Feature{}
}

func (b *Buckets) Has(key string) bool {
	_, ok := b.items[key]
	return ok
}

func (b *Buckets) Add(key string, f *geojson.Feature) {
	b.Register(key)
	b.items[key] = append(b.items[key], f)
}

// Get returns the features of key, never nil.
func (b *Buckets) Get(key string) []*geojson.Feature {
	if fs, ok := b.items[key]; ok {
		return fs
	}
	return []*geojson.Feature{}
}

func (b *Buckets) Keys() []string {
	return b.keys
}

// Merge appends every bucket of o to b.
func (b *Buckets) Merge(o *Buckets) {
	for _, k := range o.keys {
		b.Register(k)
		b.items[k] = append(b.items[k], o.items[k]...)
	}
}
