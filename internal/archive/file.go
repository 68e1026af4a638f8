package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileDestination writes JSONL data to a local file. Writes go through a
// temp file and rename so readers never observe a partial archive.
type FileDestination struct {
	path string
}

// NewFileDestination creates a file destination at the given path.
func NewFileDestination(path string) *FileDestination {
	return &FileDestination{path: path}
}

// Write replaces the configured file with data.
func (d *FileDestination) Write(_ context.Context, data []byte) error {
	dir := filepath.Dir(d.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".archive-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, d.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
