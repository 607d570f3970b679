package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/prefstore/internal/document"
)

func objectDoc() *document.Document {
	doc := document.New()
	doc.Set("EditorPreferences", cty.ObjectVal(map[string]cty.Value{
		"tab_width": cty.NumberIntVal(4),
		"wrap":      cty.True,
	}))
	doc.Set("AudioPreferences", cty.ObjectVal(map[string]cty.Value{
		"volume": cty.NumberFloatVal(0.5),
		"muted":  cty.False,
	}))
	return doc
}

func TestHCLRenderParseRoundTrip(t *testing.T) {
	f := HCL{}

	out, err := f.Render(objectDoc())
	require.NoError(t, err)

	parsed, err := f.Parse(out)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(objectDoc()))
}

func TestHCLRenderIsDeterministic(t *testing.T) {
	f := HCL{}

	first, err := f.Render(objectDoc())
	require.NoError(t, err)
	second, err := f.Render(objectDoc())
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second))
	assert.Less(t,
		strings.Index(string(first), `pref "AudioPreferences"`),
		strings.Index(string(first), `pref "EditorPreferences"`),
		"blocks appear in identifier order")
}

func TestHCLObjectEntrySplatsAttributes(t *testing.T) {
	f := HCL{}

	out, err := f.Render(objectDoc())
	require.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "volume")
	assert.Contains(t, text, "tab_width")
	assert.NotContains(t, text, scalarAttr+" =", "object entries must not be wrapped")
}

func TestHCLScalarEntryUsesValueAttribute(t *testing.T) {
	f := HCL{}
	doc := document.New()
	doc.Set("LaunchCount", cty.NumberIntVal(3))

	out, err := f.Render(doc)
	require.NoError(t, err)
	assert.Contains(t, string(out), "value = 3")

	parsed, err := f.Parse(out)
	require.NoError(t, err)
	val, ok := parsed.Get("LaunchCount")
	require.True(t, ok)
	assert.True(t, val.RawEquals(cty.NumberIntVal(3)))
}

func TestHCLEmptyObjectRoundTrips(t *testing.T) {
	f := HCL{}
	doc := document.New()
	doc.Set("Marker", cty.EmptyObjectVal)

	out, err := f.Render(doc)
	require.NoError(t, err)

	parsed, err := f.Parse(out)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(doc))
}

func TestHCLParseRejectsTopLevelAttributes(t *testing.T) {
	f := HCL{}

	_, err := f.Parse([]byte("volume = 0.5\n"))
	require.Error(t, err)
}

func TestHCLParseRejectsUnknownBlocks(t *testing.T) {
	f := HCL{}

	_, err := f.Parse([]byte("settings \"x\" {\n}\n"))
	require.Error(t, err)
}

func TestHCLParseRejectsNestedBlocks(t *testing.T) {
	f := HCL{}

	_, err := f.Parse([]byte("pref \"x\" {\n  inner {\n  }\n}\n"))
	require.Error(t, err)
}

func TestHCLParseMalformedSource(t *testing.T) {
	f := HCL{}

	_, err := f.Parse([]byte("pref \"x\" {"))
	require.Error(t, err)
}
