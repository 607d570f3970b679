// Package document defines the on-the-wire form of a preference store: an
// ordered mapping from effective type identifier to that type's serialized
// value.
//
// Entries are dynamic cty values rather than concrete Go values because a
// parsed document only reflects the shape the data had when it was written;
// reconciling that shape with the currently registered types is the codec's
// job, not the document's.
package document

import (
	"sort"

	"github.com/zclconf/go-cty/cty"
)

// Document is an ordered identifier → value mapping. Iteration order is
// lexicographic by identifier, which keeps rendered output diff-stable.
type Document struct {
	entries map[string]cty.Value
}

// New creates an empty document.
func New() *Document {
	return &Document{entries: make(map[string]cty.Value)}
}

// Set inserts or replaces the entry for key.
func (d *Document) Set(key string, val cty.Value) {
	d.entries[key] = val
}

// Get returns the entry for key, if present.
func (d *Document) Get(key string) (cty.Value, bool) {
	val, ok := d.entries[key]
	return val, ok
}

// Len returns the number of entries.
func (d *Document) Len() int {
	return len(d.entries)
}

// Keys returns all identifiers in lexicographic order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for key := range d.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Equal reports whether both documents hold the same identifiers with
// raw-equal values.
func (d *Document) Equal(other *Document) bool {
	if d.Len() != other.Len() {
		return false
	}
	for key, val := range d.entries {
		otherVal, ok := other.entries[key]
		if !ok || !val.RawEquals(otherVal) {
			return false
		}
	}
	return true
}
