// Package vcstest provides an in-memory VCS for tests.
package vcstest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sokinpui/ghost/internal/vcs"
)

// Fake keeps the last committed content of each tracked file in memory and
// works against the real files on disk. Every call is recorded in Calls.
type Fake struct {
	// Committed maps a file path to its content at the last commit.
	Committed map[string]string
	// Messages holds the messages of every successful Commit.
	Messages []string
	// Calls records the operations invoked, e.g. "diff README.md", "stage", "commit".
	Calls []string

	DiffErr   error
	StageErr  error
	CommitErr error
	RevertErr error
}

var _ vcs.VCS = (*Fake)(nil)

// New returns a Fake whose committed state is the current content of paths.
func New(paths ...string) (*Fake, error) {
	f := &Fake{Committed: map[string]string{}}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		f.Committed[p] = string(data)
	}
	return f, nil
}

func (f *Fake) Diff(_ context.Context, path string) (string, error) {
	f.Calls = append(f.Calls, "diff "+path)
	if f.DiffErr != nil {
		return "", f.DiffErr
	}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	return vcs.UnifiedDiff(filepath.Base(path), f.Committed[path], string(data)), nil
}

func (f *Fake) StageAll(_ context.Context) error {
	f.Calls = append(f.Calls, "stage")
	return f.StageErr
}

func (f *Fake) Commit(_ context.Context, message string) error {
	f.Calls = append(f.Calls, "commit")
	if f.CommitErr != nil {
		return f.CommitErr
	}
	for p := range f.Committed {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		f.Committed[p] = string(data)
	}
	f.Messages = append(f.Messages, message)
	return nil
}

func (f *Fake) Revert(_ context.Context, path string) error {
	f.Calls = append(f.Calls, "revert "+path)
	if f.RevertErr != nil {
		return f.RevertErr
	}
	content, ok := f.Committed[path]
	if !ok {
		return fmt.Errorf("%s is not tracked", path)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func (f *Fake) Status(_ context.Context) (string, error) {
	f.Calls = append(f.Calls, "status")
	var modified []string
	for p, committed := range f.Committed {
		data, err := os.ReadFile(p)
		if err != nil || string(data) != committed {
			modified = append(modified, "modified: "+filepath.Base(p))
		}
	}
	if len(modified) == 0 {
		return "nothing to commit, working tree clean\n", nil
	}
	sort.Strings(modified)
	return strings.Join(modified, "\n") + "\n", nil
}

// Called reports whether an operation with the given prefix was recorded.
func (f *Fake) Called(prefix string) bool {
	for _, c := range f.Calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
