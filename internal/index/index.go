package index

import (
	"strings"

	"github.com/RoaringBitmap/roaring"
	"github.com/ananthvk/filecabinet/internal/record"
)

// bucketKey identifies one (field, value) pair. Field names are stored upper-cased
type bucketKey struct {
	field string
	value string
}

// FieldIndex maps every (field, value) pair of the live records to the set of locations holding
// that value. A location is whatever the owning store uses to address a record: a slot number for
// the data file, the record id for the in-memory store
type FieldIndex struct {
	buckets map[bucketKey]*roaring.Bitmap
}

// New initializes an empty FieldIndex
func New() *FieldIndex {
	return &FieldIndex{
		buckets: make(map[bucketKey]*roaring.Bitmap),
	}
}

// Add indexes the record under every field at the given location
func (x *FieldIndex) Add(r *record.Record, loc uint32) {
	for _, f := range record.Fields {
		key := bucketKey{field: strings.ToUpper(f.Name), value: f.Key(r)}
		bm, ok := x.buckets[key]
		if !ok {
			bm = roaring.New()
			x.buckets[key] = bm
		}
		bm.Add(loc)
	}
}

// Remove drops the location from every bucket. Buckets left empty are deleted, so the index never
// holds keys for values that no live record has
func (x *FieldIndex) Remove(loc uint32) {
	for key, bm := range x.buckets {
		if bm.CheckedRemove(loc) && bm.IsEmpty() {
			delete(x.buckets, key)
		}
	}
}

// Lookup returns the locations whose field equals value, in ascending order. The value must already
// be in canonical form. Unknown fields or values result in an empty slice
func (x *FieldIndex) Lookup(field, value string) []uint32 {
	bm, ok := x.buckets[bucketKey{field: strings.ToUpper(field), value: value}]
	if !ok {
		return []uint32{}
	}
	return bm.ToArray()
}

// Reset removes everything from the index
func (x *FieldIndex) Reset() {
	clear(x.buckets)
}

// Len returns the number of (field, value) buckets
func (x *FieldIndex) Len() int {
	return len(x.buckets)
}
