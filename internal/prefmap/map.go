package prefmap

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/vk/prefstore/internal/registry"
	"github.com/vk/prefstore/internal/typepath"
)

// Map is an ordered mapping from effective type identifier to the single
// owned value of that type. Values are stored boxed; the generic accessors
// recover the concrete type.
type Map struct {
	reg     *registry.Registry
	values  map[string]any
	version uint64
}

// New creates an empty store backed by the given registry.
func New(reg *registry.Registry) *Map {
	return &Map{
		reg:    reg,
		values: make(map[string]any),
	}
}

// Registry returns the registry this store resolves identifiers against.
func (m *Map) Registry() *registry.Registry {
	return m.reg
}

// Version returns the monotonic change counter. It advances on every
// mutation and never goes backwards; the save scheduler compares it against
// the version it last persisted.
func (m *Map) Version() uint64 {
	return m.version
}

func (m *Map) bump() {
	m.version++
}

// Len returns the number of entries.
func (m *Map) Len() int {
	return len(m.values)
}

// IsEmpty reports whether the store holds no entries.
func (m *Map) IsEmpty() bool {
	return len(m.values) == 0
}

// Keys returns all effective identifiers in lexicographic order.
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for key := range m.values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every entry in identifier order.
func (m *Map) Each(fn func(key string, value any)) {
	for _, key := range m.Keys() {
		fn(key, m.values[key])
	}
}

// SetAny inserts or overwrites the entry for the dynamic type of v. The type
// must be registered; anything else is a wiring bug and panics.
func (m *Map) SetAny(v any) {
	key := m.reg.MustEffectivePath(typepath.FromValue(v))
	m.values[key] = v
	m.bump()
}

// SetDefault inserts the registration's default value if the entry is
// absent. It reports whether an insertion happened.
func (m *Map) SetDefault(reg *registry.Registration) bool {
	key := m.reg.MustEffectivePath(reg.Path)
	if _, ok := m.values[key]; ok {
		return false
	}
	if reg.NewDefault == nil {
		return false
	}
	m.values[key] = reg.NewDefault()
	m.bump()
	return true
}

// Equal reports whether both stores hold the same identifiers with
// structurally equal values.
func (m *Map) Equal(other *Map) bool {
	if len(m.values) != len(other.values) {
		return false
	}
	for key, val := range m.values {
		otherVal, ok := other.values[key]
		if !ok || !reflect.DeepEqual(val, otherVal) {
			return false
		}
	}
	return true
}

// Set inserts or overwrites the entry for T, advancing the change counter.
func Set[T any](m *Map, value T) {
	key := m.reg.MustEffectivePath(typepath.Of[T]())
	m.values[key] = value
	m.bump()
}

// Get returns a copy of the entry for T, if present. Mutating the returned
// value does not touch the store; use Set, Update or Mutate to write back.
func Get[T any](m *Map) (T, bool) {
	key := m.reg.MustEffectivePath(typepath.Of[T]())
	boxed, ok := m.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	value, ok := boxed.(T)
	if !ok {
		panic(fmt.Sprintf("prefmap: entry %q holds %T, not %v", key, boxed, reflect.TypeFor[T]()))
	}
	return value, true
}

// GetOrDefault returns the entry for T, inserting the registration table's
// default on a miss.
func GetOrDefault[T any](m *Map) T {
	key := m.reg.MustEffectivePath(typepath.Of[T]())
	if boxed, ok := m.values[key]; ok {
		return boxed.(T)
	}
	value := defaultValue[T](m)
	m.values[key] = value
	m.bump()
	return value
}

// Take removes and returns the entry for T, transferring ownership to the
// caller.
func Take[T any](m *Map) (T, bool) {
	key := m.reg.MustEffectivePath(typepath.Of[T]())
	boxed, ok := m.values[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(m.values, key)
	m.bump()
	return boxed.(T), true
}

func defaultValue[T any](m *Map) T {
	reg, ok := m.reg.Lookup(typepath.Of[T]().Full)
	if ok && reg.NewDefault != nil {
		return reg.NewDefault().(T)
	}
	var zero T
	return zero
}
