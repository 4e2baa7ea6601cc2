// Package storage persists uploaded resume files.
package storage

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Blob describes a stored file.
type Blob struct {
	// Filename is the generated name the file was stored under.
	Filename string
	// Location is a filesystem path or an s3:// URL.
	Location string
	Size     int64
}

// Store saves resume files under unique generated names.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (Blob, error)
	Name() string
}

// copyBufferSize is the chunk size used when streaming uploads to disk.
const copyBufferSize = 1 << 20

// generatedName returns a random file name that keeps the original extension.
func generatedName(originalName string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if len(ext) > 10 || strings.ContainsAny(ext, `/\ `) {
		ext = ""
	}
	return uuid.NewString() + ext
}
