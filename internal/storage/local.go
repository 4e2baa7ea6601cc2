package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore writes files into a directory on the local filesystem.
type LocalStore struct {
	dir string
}

// NewLocalStore creates dir if needed and returns a store rooted there.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("storage: upload directory is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Name implements Store.
func (s *LocalStore) Name() string { return "local" }

// Dir returns the root directory.
func (s *LocalStore) Dir() string { return s.dir }

// Save streams r to a new file in 1 MiB chunks.
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return Blob{}, err
	}

	name := generatedName(originalName)
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Blob{}, fmt.Errorf("storage: create file: %w", err)
	}

	n, err := io.CopyBuffer(f, r, make([]byte, copyBufferSize))
	if err != nil {
		f.Close()
		os.Remove(path)
		return Blob{}, fmt.Errorf("storage: write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return Blob{}, fmt.Errorf("storage: close %s: %w", name, err)
	}

	return Blob{Filename: name, Location: path, Size: n}, nil
}
