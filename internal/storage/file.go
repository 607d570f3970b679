package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vk/prefstore/internal/ctxlog"
	"github.com/vk/prefstore/internal/document"
	"github.com/vk/prefstore/internal/format"
)

// FileBackend persists the document as a single file in a per-application
// directory, using the format's default file name.
type FileBackend struct {
	path   string
	format format.Format
}

// NewFileBackend creates the parent directory if needed and returns a
// backend writing to dir/<format file name>.
func NewFileBackend(dir string, f format.Format) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create preferences directory: %w", err)
	}
	return &FileBackend{
		path:   filepath.Join(dir, f.FileName()),
		format: f,
	}, nil
}

// Path returns the full path of the preferences file.
func (b *FileBackend) Path() string {
	return b.path
}

func (b *FileBackend) Load(ctx context.Context) (*document.Document, error) {
	contents, err := os.ReadFile(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}
	ctxlog.FromContext(ctx).Info("Loading preferences.", "path", b.path)
	return b.format.Parse(contents)
}

func (b *FileBackend) Save(ctx context.Context, doc *document.Document) error {
	ctxlog.FromContext(ctx).Debug("Storing preferences.", "path", b.path)

	contents, err := b.format.Render(doc)
	if err != nil {
		return err
	}
	return writeAtomically(b.path, contents)
}

// writeAtomically writes contents to a temp file in the destination's
// directory, fsyncs it and renames it over the destination, so a reader
// never observes a partial file. On any failure before the rename the
// previous file is untouched.
func writeAtomically(path string, contents []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".preferences-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(contents); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
