// Package vcs wraps the version-control operations used to review and persist
// document changes.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// VCS is the capability set the review and commit gates rely on.
type VCS interface {
	// Diff returns the change between the last commit and the working tree for path.
	Diff(ctx context.Context, path string) (string, error)
	// StageAll stages every working-tree change.
	StageAll(ctx context.Context) error
	// Commit records the staged changes with message.
	Commit(ctx context.Context, message string) error
	// Revert discards working-tree changes to path.
	Revert(ctx context.Context, path string) error
	// Status returns a human-readable working-tree status.
	Status(ctx context.Context) (string, error)
}

// Backend names a VCS implementation.
type Backend string

const (
	BackendGit   Backend = "git"
	BackendGoGit Backend = "go-git"
)

// CommandError reports a command that exited unsuccessfully. Stderr is kept verbatim.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	cmd := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	msg := fmt.Sprintf("%s failed (exit %d)", cmd, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *CommandError) Unwrap() error { return e.Err }

// CommandRunner runs name with args in dir and returns its captured output.
type CommandRunner func(ctx context.Context, dir, name string, args []string) (stdout string, stderr string, err error)

// RunCommand is the CommandRunner backed by os/exec.
func RunCommand(ctx context.Context, dir, name string, args []string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// exitCode extracts a process exit code from err, or -1 if it did not exit.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
