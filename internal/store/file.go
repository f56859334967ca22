package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileKV stores each value as one JSON file under <root>/<namespace>/.
type FileKV struct {
	root string
}

// NewFileKV creates a file-backed KV rooted at dir.
func NewFileKV(dir string) *FileKV {
	return &FileKV{root: dir}
}

func (f *FileKV) path(namespace, key string) string {
	return filepath.Join(f.root, namespace, key+".json")
}

// Get reads a value, returning (nil, nil) when the file does not exist.
func (f *FileKV) Get(_ context.Context, namespace, key string) ([]byte, error) {
	data, err := os.ReadFile(f.path(namespace, key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s/%s: %w", namespace, key, err)
	}
	return data, nil
}

// Set rewrites the whole file. No locking: last write wins.
func (f *FileKV) Set(_ context.Context, namespace, key string, value []byte) error {
	dir := filepath.Join(f.root, namespace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := os.WriteFile(f.path(namespace, key), value, 0o644); err != nil {
		return fmt.Errorf("failed to write %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes the file; deleting a missing key is not an error.
func (f *FileKV) Delete(_ context.Context, namespace, key string) error {
	err := os.Remove(f.path(namespace, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s/%s: %w", namespace, key, err)
	}
	return nil
}
