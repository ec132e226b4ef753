// Package blob persists file attachments and hands back retrievable handles.
package blob

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no blob exists under the requested name.
var ErrNotFound = errors.New("blob not found")

// Store saves opaque byte blobs and resolves them again by stored name.
// Save returns the public handle clients use to fetch the blob.
type Store interface {
	Save(name string, data []byte) (string, error)
	Resolve(name string) (string, error)
}

// FS is a Store over a single directory on the local filesystem.
type FS struct {
	dir string
}

// NewFS creates the directory if needed and returns a filesystem store.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FS{dir: dir}, nil
}

// Save writes data under the sanitized name and returns its handle.
func (s *FS) Save(name string, data []byte) (string, error) {
	name = Sanitize(name)
	if name == "" {
		return "", errors.New("empty blob name")
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return "/uploads/" + name, nil
}

// Resolve maps a stored name to its on-disk path, rejecting anything that
// would escape the store directory.
func (s *FS) Resolve(name string) (string, error) {
	if name != Sanitize(name) {
		return "", ErrNotFound
	}
	path := filepath.Join(s.dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

// Sanitize strips any path components from a client-supplied file name.
func Sanitize(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == ".." || name == "/" {
		return ""
	}
	return name
}
