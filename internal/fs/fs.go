package fs

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// PathResolver finds absolute paths for files relative to a list of lookup directories.
type PathResolver struct {
	lookupDirs []string
}

// NewPathResolver creates a new PathResolver. Directories that cannot be made absolute
// are dropped; with no usable directory the current working directory is used.
func NewPathResolver(lookupDirs ...string) (*PathResolver, error) {
	absDirs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		absDirs = append(absDirs, abs)
	}
	if len(absDirs) == 0 {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		absDirs = append(absDirs, wd)
	}
	return &PathResolver{lookupDirs: absDirs}, nil
}

// Resolve finds an absolute path, assuming the first lookup directory if the file
// does not exist anywhere.
func (r *PathResolver) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if existing := r.ResolveExisting(path); existing != "" {
		return existing
	}
	return filepath.Join(r.lookupDirs[0], path)
}

// ResolveExisting finds an absolute path only if the file exists.
func (r *PathResolver) ResolveExisting(path string) string {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err == nil {
			return filepath.Clean(path)
		}
		return ""
	}
	for _, dir := range r.lookupDirs {
		absPath := filepath.Join(dir, path)
		if _, err := os.Stat(absPath); err == nil {
			return absPath
		}
	}
	return ""
}

// FileSHA256 returns the hex SHA-256 of a file's content.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
