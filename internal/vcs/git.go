package vcs

import (
	"context"

	"github.com/chainguard-dev/clog"
)

// Git drives the git command line with fixed argument lists.
type Git struct {
	dir    string
	runner CommandRunner
}

// NewGit returns a Git working in dir. A nil runner uses RunCommand.
func NewGit(dir string, runner CommandRunner) *Git {
	if runner == nil {
		runner = RunCommand
	}
	return &Git{dir: dir, runner: runner}
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	clog.FromContext(ctx).With("args", args).Debug("running git")
	stdout, stderr, err := g.runner(ctx, g.dir, "git", args)
	if err != nil {
		return stdout, &CommandError{
			Name:     "git",
			Args:     args,
			ExitCode: exitCode(err),
			Stderr:   stderr,
			Err:      err,
		}
	}
	return stdout, nil
}

// Diff compares path in the working tree with the last commit, ignoring the index.
func (g *Git) Diff(ctx context.Context, path string) (string, error) {
	return g.run(ctx, "diff", "HEAD", "--", path)
}

func (g *Git) StageAll(ctx context.Context) error {
	_, err := g.run(ctx, "add", ".")
	return err
}

func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// Revert restores path from the last commit, in both the index and the working tree.
func (g *Git) Revert(ctx context.Context, path string) error {
	_, err := g.run(ctx, "checkout", "HEAD", "--", path)
	return err
}

func (g *Git) Status(ctx context.Context) (string, error) {
	return g.run(ctx, "status")
}
