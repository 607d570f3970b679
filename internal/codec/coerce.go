package codec

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/vk/prefstore/internal/ctxlog"
	"github.com/vk/prefstore/internal/registry"
)

// coerce turns a dynamic document value into a concrete value of the
// registered type, degrading progressively:
//
//  1. structural conversion of the whole value into the target type;
//  2. field-by-field application of whatever matches onto the registered
//     default, keeping the default for unknown, missing or unconvertible
//     fields;
//  3. error if no default is registered either.
func coerce(ctx context.Context, reg *registry.Registration, raw cty.Value) (any, error) {
	logger := ctxlog.FromContext(ctx)

	want := reg.CtyType
	if want == cty.NilType {
		return nil, fmt.Errorf("type %s cannot be expressed as a document value", reg.Path.Full)
	}

	if converted, err := convert.Convert(raw, want); err == nil {
		out := reflect.New(reg.Type)
		if err := gocty.FromCtyValue(converted, out.Interface()); err == nil {
			return out.Elem().Interface(), nil
		}
		logger.Debug("Converted value did not decode into target type, applying partially.",
			"type", reg.Path.Full, "error", err)
	} else {
		logger.Debug("Stored shape does not convert to target type, applying partially.",
			"type", reg.Path.Full, "stored_type", raw.Type().FriendlyName(), "error", err)
	}

	if reg.NewDefault == nil {
		return nil, fmt.Errorf("stored %s does not match type %s and no default is registered",
			raw.Type().FriendlyName(), reg.Path.Full)
	}
	return partialApply(ctx, reg, raw), nil
}

// partialApply overwrites the registered default with the attributes of raw
// that still line up with the target struct. Anything that no longer fits is
// kept at its default.
func partialApply(ctx context.Context, reg *registry.Registration, raw cty.Value) any {
	logger := ctxlog.FromContext(ctx)

	def := reg.NewDefault()
	if raw.IsNull() || !raw.Type().IsObjectType() || reg.Type.Kind() != reflect.Struct {
		logger.Warn("Stored value shape is unusable, keeping registered default.",
			"type", reg.Path.Full, "stored_type", raw.Type().FriendlyName())
		return def
	}

	out := reflect.New(reg.Type)
	out.Elem().Set(reflect.ValueOf(def))

	for i := 0; i < reg.Type.NumField(); i++ {
		field := reg.Type.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("cty"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if !raw.Type().HasAttribute(name) {
			continue
		}

		attr := raw.GetAttr(name)
		fieldWant, err := gocty.ImpliedType(reflect.Zero(field.Type).Interface())
		if err != nil {
			logger.Debug("Could not imply cty type for field, keeping default.",
				"type", reg.Path.Full, "field", name, "error", err)
			continue
		}
		converted, err := convert.Convert(attr, fieldWant)
		if err != nil {
			logger.Warn("Stored field does not convert, keeping default.",
				"type", reg.Path.Full, "field", name, "error", err)
			continue
		}
		if err := gocty.FromCtyValue(converted, out.Elem().Field(i).Addr().Interface()); err != nil {
			logger.Warn("Stored field did not decode, keeping default.",
				"type", reg.Path.Full, "field", name, "error", err)
		}
	}
	return out.Elem().Interface()
}
