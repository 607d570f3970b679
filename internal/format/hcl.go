package format

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/prefstore/internal/document"
)

// scalarAttr is the attribute name used when an entry's value is not an
// object and therefore cannot splat its fields into the block body. A
// single-field struct tagged cty:"value" is indistinguishable from this
// wrapping on parse, so that field name is effectively reserved.
const scalarAttr = "value"

// HCL renders each entry as one labeled block:
//
//	pref "AudioPreferences" {
//	  volume = 0.8
//	  muted  = false
//	}
//
// Object values splat their attributes into the block body, anything else is
// written as a single "value" attribute.
type HCL struct{}

func (HCL) FileName() string {
	return "preferences.hcl"
}

func (HCL) Render(doc *document.Document) ([]byte, error) {
	file := hclwrite.NewEmptyFile()
	root := file.Body()

	for i, key := range doc.Keys() {
		if i > 0 {
			root.AppendNewline()
		}
		val, _ := doc.Get(key)
		body := root.AppendNewBlock("pref", []string{key}).Body()
		if val.Type().IsObjectType() && !val.IsNull() {
			attrTypes := val.Type().AttributeTypes()
			names := make([]string, 0, len(attrTypes))
			for name := range attrTypes {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				body.SetAttributeValue(name, val.GetAttr(name))
			}
		} else {
			body.SetAttributeValue(scalarAttr, val)
		}
	}
	return file.Bytes(), nil
}

func (f HCL) Parse(src []byte) (*document.Document, error) {
	file, diags := hclsyntax.ParseConfig(src, f.FileName(), hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parse preferences: %w", diags)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("parse preferences: unexpected body type %T", file.Body)
	}
	if len(body.Attributes) > 0 {
		return nil, fmt.Errorf("parse preferences: top-level attributes are not allowed, entries must be pref blocks")
	}

	doc := document.New()
	for _, block := range body.Blocks {
		if block.Type != "pref" || len(block.Labels) != 1 {
			return nil, fmt.Errorf("parse preferences: unexpected block %q at %s", block.Type, block.TypeRange)
		}
		val, err := blockValue(block)
		if err != nil {
			return nil, err
		}
		doc.Set(block.Labels[0], val)
	}
	return doc, nil
}

func blockValue(block *hclsyntax.Block) (cty.Value, error) {
	attrs := block.Body.Attributes
	if len(block.Body.Blocks) > 0 {
		return cty.NilVal, fmt.Errorf("parse preferences: entry %q contains nested blocks", block.Labels[0])
	}

	values := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return cty.NilVal, fmt.Errorf("parse preferences: entry %q attribute %q: %w", block.Labels[0], name, diags)
		}
		values[name] = val
	}

	if len(values) == 1 {
		if val, ok := values[scalarAttr]; ok {
			return val, nil
		}
	}
	if len(values) == 0 {
		return cty.EmptyObjectVal, nil
	}
	return cty.ObjectVal(values), nil
}
