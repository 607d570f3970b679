package format

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/prefstore/internal/document"
)

// JSON renders the whole document as a single indented JSON object keyed by
// effective identifier. cty serializes object attributes in lexicographic
// order, which keeps the output diff-stable.
type JSON struct{}

func (JSON) FileName() string {
	return "preferences.json"
}

func (JSON) Render(doc *document.Document) ([]byte, error) {
	values := make(map[string]cty.Value, doc.Len())
	for _, key := range doc.Keys() {
		val, _ := doc.Get(key)
		values[key] = val
	}

	obj := cty.EmptyObjectVal
	if len(values) > 0 {
		obj = cty.ObjectVal(values)
	}

	raw, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return nil, fmt.Errorf("render preferences: %w", err)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("render preferences: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func (JSON) Parse(src []byte) (*document.Document, error) {
	impliedType, err := ctyjson.ImpliedType(src)
	if err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	if !impliedType.IsObjectType() {
		return nil, fmt.Errorf("parse preferences: document root is %s, expected an object", impliedType.FriendlyName())
	}

	val, err := ctyjson.Unmarshal(src, impliedType)
	if err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}

	doc := document.New()
	for name := range impliedType.AttributeTypes() {
		doc.Set(name, val.GetAttr(name))
	}
	return doc, nil
}
