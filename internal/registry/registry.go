package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/prefstore/internal/typepath"
)

// Plugin is the interface that preference owners implement to be registered.
type Plugin interface {
	Register(r *Registry)
}

// Registration holds everything the store and codec need to know about one
// preference type: its identity, its concrete Go type, its wire type, and a
// factory for its default value. NewDefault may be nil, in which case the
// codec has no fallback when stored data cannot be coerced into the type.
type Registration struct {
	Path typepath.Path
	Type reflect.Type
	// CtyType is the implied wire type, computed once at registration.
	// NilType means the Go type has no cty representation and entries of
	// this type cannot be decoded.
	CtyType    cty.Type
	NewDefault func() any
}

// Registry holds all registered preference types for a single application
// instance. It is write-once per type: populated during startup, sealed, and
// read-only afterwards.
type Registry struct {
	byFull  map[string]*Registration
	byShort map[string][]*Registration
	sealed  bool
}

// New creates and initializes a new empty Registry instance.
func New() *Registry {
	return &Registry{
		byFull:  make(map[string]*Registration),
		byShort: make(map[string][]*Registration),
	}
}

// Register registers T with its zero value as the default.
func Register[T any](r *Registry) {
	RegisterFactory(r, func() T {
		var zero T
		return zero
	})
}

// RegisterValue registers T with a fixed default value used whenever nothing
// is loaded from storage or stored data cannot be coerced.
func RegisterValue[T any](r *Registry, def T) {
	RegisterFactory(r, func() T { return def })
}

// RegisterFactory registers T with an explicit default-value factory.
func RegisterFactory[T any](r *Registry, newDefault func() T) {
	var fn func() any
	if newDefault != nil {
		fn = func() any { return newDefault() }
	}
	r.RegisterType(reflect.TypeFor[T](), fn)
}

// RegisterType registers a preference type by its reflect.Type. Registering
// the same type twice, or registering after the registry has been sealed, is
// a wiring bug and panics.
func (r *Registry) RegisterType(t reflect.Type, newDefault func() any) {
	if r.sealed {
		panic(fmt.Sprintf("registry: cannot register %s after the registry has been sealed", t))
	}
	path := typepath.FromType(t)
	if _, exists := r.byFull[path.Full]; exists {
		panic(fmt.Sprintf("registry: preference type '%s' already registered", path.Full))
	}
	slog.Debug("Registering preference type.", "type", path.Full)

	ctyType, err := gocty.ImpliedType(reflect.New(t).Elem().Interface())
	if err != nil {
		slog.Debug("Preference type has no wire representation.", "type", path.Full, "error", err)
		ctyType = cty.NilType
	}

	reg := &Registration{Path: path, Type: t, CtyType: ctyType, NewDefault: newDefault}
	r.byFull[path.Full] = reg
	r.byShort[path.Short] = append(r.byShort[path.Short], reg)
}

// Seal marks the end of the registration phase. Sealing twice indicates a
// double application build and panics.
func (r *Registry) Seal() {
	if r.sealed {
		panic("registry: sealed more than once; the application was built twice")
	}
	r.sealed = true
}

// Sealed reports whether the registration phase has ended.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.byFull)
}

// Registrations returns all registrations ordered by full path. The order is
// deterministic so callers that seed defaults produce stable stores.
func (r *Registry) Registrations() []*Registration {
	paths := make([]string, 0, len(r.byFull))
	for full := range r.byFull {
		paths = append(paths, full)
	}
	sort.Strings(paths)

	regs := make([]*Registration, 0, len(paths))
	for _, full := range paths {
		regs = append(regs, r.byFull[full])
	}
	return regs
}
