package storage

import (
	"context"

	"github.com/vk/prefstore/internal/document"
)

// MemoryBackend holds the document in memory. It backs the "no storage"
// configuration and tests; nothing survives the process.
type MemoryBackend struct {
	doc   *document.Document
	saves int
}

// NewMemoryBackend returns an empty backend reporting ErrNotFound until the
// first save.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) Load(_ context.Context) (*document.Document, error) {
	if b.doc == nil {
		return nil, ErrNotFound
	}
	return b.doc, nil
}

func (b *MemoryBackend) Save(_ context.Context, doc *document.Document) error {
	b.doc = doc
	b.saves++
	return nil
}

// SaveCount returns how many saves have completed.
func (b *MemoryBackend) SaveCount() int {
	return b.saves
}
