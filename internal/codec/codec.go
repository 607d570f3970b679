package codec

import (
	"context"
	"errors"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/prefstore/internal/ctxlog"
	"github.com/vk/prefstore/internal/document"
	"github.com/vk/prefstore/internal/prefmap"
	"github.com/vk/prefstore/internal/registry"
)

// Encode serializes every store entry into a document keyed by effective
// identifier. Entries whose value cannot be expressed as a cty value are
// skipped and reported in the joined error; the returned document is always
// usable.
func Encode(ctx context.Context, store *prefmap.Map) (*document.Document, error) {
	logger := ctxlog.FromContext(ctx)

	doc := document.New()
	var errs []error
	store.Each(func(key string, value any) {
		val, err := toCtyValue(value)
		if err != nil {
			logger.Error("Failed to serialize preference entry.", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("serialize entry %q: %w", key, err))
			return
		}
		doc.Set(key, val)
	})
	return doc, errors.Join(errs...)
}

// Decode builds a store from a document. Each entry is resolved through the
// registry (short path first, then full path); unregistered identifiers and
// entries that cannot be coerced are dropped with a diagnostic, never
// aborting their siblings. The returned store is always usable; the joined
// error reports what was dropped.
func Decode(ctx context.Context, reg *registry.Registry, doc *document.Document) (*prefmap.Map, error) {
	logger := ctxlog.FromContext(ctx)

	store := prefmap.New(reg)
	var errs []error
	for _, key := range doc.Keys() {
		raw, _ := doc.Get(key)

		registration, ok := reg.Lookup(key)
		if !ok {
			logger.Error("Document references an unregistered preference type; entry dropped.", "key", key)
			errs = append(errs, fmt.Errorf("entry %q: %w", key, &registry.ErrUnregistered{Path: key}))
			continue
		}

		value, err := coerce(ctx, registration, raw)
		if err != nil {
			logger.Error("Failed to coerce preference entry; entry dropped.", "key", key, "error", err)
			errs = append(errs, fmt.Errorf("entry %q: %w", key, err))
			continue
		}
		store.SetAny(value)
	}
	return store, errors.Join(errs...)
}

func toCtyValue(value any) (cty.Value, error) {
	impliedType, err := gocty.ImpliedType(value)
	if err != nil {
		return cty.NilVal, err
	}
	return gocty.ToCtyValue(value, impliedType)
}
