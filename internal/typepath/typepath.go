// Package typepath derives the identity under which a preference type is
// registered and stored.
//
// Every registered Go type is named by a pair of paths: the full path
// ("github.com/you/app/plugins/audio.Preferences") is globally unique, while
// the short path ("Preferences") is the human-readable form that may collide
// across packages. Which of the two ends up as a document key is decided by
// the registry at resolution time, not here.
package typepath

import (
	"fmt"
	"reflect"
)

// Path is the (full, short) identity pair of a registered type.
type Path struct {
	Full  string
	Short string
}

// Of returns the Path for the type parameter T.
func Of[T any]() Path {
	return FromType(reflect.TypeFor[T]())
}

// FromType returns the Path of t. Pointer types are resolved to their
// element type so *T and T share one identity. Unnamed types cannot act as
// preferences and panic, which indicates a wiring bug rather than a data
// condition.
func FromType(t reflect.Type) Path {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		panic(fmt.Sprintf("typepath: unnamed type %v cannot be used as a preference type", t))
	}
	full := t.Name()
	if pkg := t.PkgPath(); pkg != "" {
		full = pkg + "." + t.Name()
	}
	return Path{Full: full, Short: t.Name()}
}

// FromValue returns the Path of v's dynamic type.
func FromValue(v any) Path {
	return FromType(reflect.TypeOf(v))
}

func (p Path) String() string {
	return p.Full
}
