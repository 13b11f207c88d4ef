// Package store reads and writes documents as raw text.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/natefinch/atomic"

	"github.com/sokinpui/ghost/internal/fs"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("file not found")

// Store owns the on-disk representation of documents.
type Store struct{}

// New creates a new Store.
func New() *Store {
	return &Store{}
}

// Read returns the full text of path. On failure it returns "" and an error,
// which is also logged; whether it is fatal is up to the caller.
func (s *Store) Read(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %s", ErrNotFound, path)
		} else {
			err = fmt.Errorf("reading %s: %w", path, err)
		}
		clog.FromContext(ctx).Warnf("read failed: %v", err)
		return "", err
	}
	return string(data), nil
}

// Write replaces the content of path. Readers see either the old or the new
// content, never a partial write.
func (s *Store) Write(ctx context.Context, path, text string) error {
	if err := atomic.WriteFile(path, strings.NewReader(text)); err != nil {
		err = fmt.Errorf("writing %s: %w", path, err)
		clog.FromContext(ctx).Errorf("write failed: %v", err)
		return err
	}
	clog.FromContext(ctx).With("bytes", len(text)).Debug("document written")
	return nil
}

// Exists reports whether path names an existing regular file.
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Hash returns the SHA-256 of the document, or "" if it cannot be read.
func (s *Store) Hash(path string) string {
	h, err := fs.FileSHA256(path)
	if err != nil {
		return ""
	}
	return h
}
