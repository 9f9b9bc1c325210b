// Package blobstore provides the photo storage backend. The handler
// side depends only on Put and URL, matching the pantry storage
// contract, so the backend can be swapped without touching features.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dalemusser/waffle/pantry/storage"
)

// Local writes blobs under a directory on disk and serves them through
// the file server mounted at URLPrefix.
type Local struct {
	Dir       string
	URLPrefix string
}

// NewLocal creates the backing directory if needed.
func NewLocal(dir, urlPrefix string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("local blob storage path is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob storage dir %s: %w", dir, err)
	}
	return &Local{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Put writes the blob at path, creating intermediate directories. The
// write goes to a temp file first and is renamed into place, so a
// partial write never becomes visible under the public URL.
func (l *Local) Put(ctx context.Context, path string, r io.Reader, opts *storage.PutOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	full := filepath.Join(l.Dir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("write blob %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close blob %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return fmt.Errorf("finalize blob %s: %w", path, err)
	}
	return nil
}

// URL returns the public URL for a stored blob.
func (l *Local) URL(path string) string {
	return l.URLPrefix + "/" + strings.TrimPrefix(path, "/")
}
