// Package format defines the pluggable text representation of a preferences
// document, plus the two built-in formats: HCL (default) and JSON.
//
// A format is a pure serialization strategy: it never consults the type
// registry. Parsed entries come back as dynamic cty values in whatever shape
// the text had; the codec reconciles them with the registered types.
package format

import (
	"fmt"

	"github.com/vk/prefstore/internal/document"
)

// Format renders a document to text and parses it back, and names the file
// the document lives in.
type Format interface {
	// FileName is the default file name for this format, e.g. "preferences.hcl".
	FileName() string
	// Render serializes the document in identifier order. Output is
	// deterministic for a given document.
	Render(doc *document.Document) ([]byte, error)
	// Parse reads a document previously produced by Render (or edited by a
	// human). Entries keep the shape found in the text.
	Parse(src []byte) (*document.Document, error)
}

// ByName resolves a format by its configuration name.
func ByName(name string) (Format, error) {
	switch name {
	case "", "hcl":
		return HCL{}, nil
	case "json":
		return JSON{}, nil
	default:
		return nil, fmt.Errorf("unknown preferences format %q (supported: hcl, json)", name)
	}
}
