package registry

import (
	"fmt"

	"github.com/vk/prefstore/internal/typepath"
)

// ErrUnregistered reports a type path with no matching registration.
type ErrUnregistered struct {
	Path string
}

func (e *ErrUnregistered) Error() string {
	return fmt.Sprintf("type %q is not registered; register it before use", e.Path)
}

// EffectivePath resolves the document key under which a type is stored.
//
// The short path is preferred because it keeps documents human-readable, but
// it is only usable while it names exactly one registered type and that type
// is the one being asked about. Otherwise the full path disambiguates. A
// type that matches neither rule was never registered.
func (r *Registry) EffectivePath(p typepath.Path) (string, error) {
	if regs := r.byShort[p.Short]; len(regs) == 1 && regs[0].Path.Full == p.Full {
		return p.Short, nil
	}
	if _, ok := r.byFull[p.Full]; ok {
		return p.Full, nil
	}
	return "", &ErrUnregistered{Path: p.Full}
}

// MustEffectivePath is EffectivePath for the typed accessor API, where an
// unregistered type is a programmer error rather than a data condition.
func (r *Registry) MustEffectivePath(p typepath.Path) string {
	key, err := r.EffectivePath(p)
	if err != nil {
		panic(fmt.Sprintf("registry: %v", err))
	}
	return key
}

// Lookup finds the registration for a document key, trying the short path
// first and the full path second. An ambiguous short path never matches:
// documents written under an ambiguous name always carry full paths.
func (r *Registry) Lookup(key string) (*Registration, bool) {
	if regs := r.byShort[key]; len(regs) == 1 {
		return regs[0], true
	}
	reg, ok := r.byFull[key]
	return reg, ok
}
