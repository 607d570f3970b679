// Package storage persists the rendered preferences document as an opaque
// blob behind a narrow load/save contract.
//
// A backend never interprets the document; parsing and rendering belong to
// the format strategy it is constructed with. "No document yet" is a normal
// first-run condition and is reported as ErrNotFound, distinct from real
// I/O failures.
package storage

import (
	"context"
	"errors"

	"github.com/vk/prefstore/internal/document"
)

// ErrNotFound reports that the backend holds no document yet.
var ErrNotFound = errors.New("preferences document not found")

// Backend loads and saves the whole document. Save replaces the stored
// document atomically: a failed save leaves the previously stored document
// intact.
type Backend interface {
	Load(ctx context.Context) (*document.Document, error)
	Save(ctx context.Context, doc *document.Document) error
}
