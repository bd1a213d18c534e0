package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore persists the document as a JSON file. Writes go through a
// temp file and rename so a crash never leaves a half-written
// document behind.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed document store at path, creating
// parent directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("memory: file store path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("memory: create store directory: %w", err)
		}
	}
	return &FileStore{path: path}, nil
}

// Path returns the document path.
func (s *FileStore) Path() string { return s.path }

// Load reads and decodes the document. A missing file yields an empty
// document.
func (s *FileStore) Load(ctx context.Context) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Document{Version: DocumentVersion}, nil
		}
		return nil, fmt.Errorf("memory: read document: %w", err)
	}
	return decodeDocument(data)
}

// Save atomically replaces the document file.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".memory-*.tmp")
	if err != nil {
		return fmt.Errorf("memory: create temp document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("memory: write temp document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("memory: sync temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("memory: close temp document: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("memory: chmod temp document: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("memory: replace document: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
