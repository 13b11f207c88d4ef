package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo implements VCS in-process with go-git, without a git binary.
type Repo struct {
	repo   *git.Repository
	root   string
	author *object.Signature
}

// RepoOption configures a Repo.
type RepoOption func(*Repo)

// WithAuthor sets the commit author. Without it the repository's configured
// user is used.
func WithAuthor(name, email string) RepoOption {
	return func(r *Repo) {
		r.author = &object.Signature{Name: name, Email: email}
	}
}

// OpenRepo opens the repository containing dir.
func OpenRepo(dir string, opts ...RepoOption) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", dir, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("getting worktree: %w", err)
	}
	r := &Repo{repo: repo, root: worktree.Filesystem.Root()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// rel converts path to a slash-separated path relative to the worktree root.
func (r *Repo) rel(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// headContent returns the committed content of rel and whether it exists in HEAD.
func (r *Repo) headContent(rel string) (string, bool, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolving HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return "", false, fmt.Errorf("loading HEAD commit: %w", err)
	}
	file, err := commit.File(rel)
	if errors.Is(err, object.ErrFileNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up %s in HEAD: %w", rel, err)
	}
	content, err := file.Contents()
	if err != nil {
		return "", false, fmt.Errorf("reading %s from HEAD: %w", rel, err)
	}
	return content, true, nil
}

func (r *Repo) Diff(_ context.Context, path string) (string, error) {
	rel, err := r.rel(path)
	if err != nil {
		return "", err
	}
	before, _, err := r.headContent(rel)
	if err != nil {
		return "", err
	}
	after, err := os.ReadFile(filepath.Join(r.root, rel))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", rel, err)
	}
	return UnifiedDiff(rel, before, string(after)), nil
}

func (r *Repo) StageAll(_ context.Context) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}
	if err := worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("staging changes: %w", err)
	}
	return nil
}

func (r *Repo) Commit(ctx context.Context, message string) error {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("getting worktree: %w", err)
	}

	opts := &git.CommitOptions{}
	if r.author != nil {
		author := *r.author
		author.When = time.Now()
		opts.Author = &author
	}
	hash, err := worktree.Commit(message, opts)
	if err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	clog.FromContext(ctx).With("commit", hash.String()).Info("committed changes")
	return nil
}

func (r *Repo) Revert(_ context.Context, path string) error {
	rel, err := r.rel(path)
	if err != nil {
		return err
	}
	content, ok, err := r.headContent(rel)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s is not in the last commit", rel)
	}

	abs := filepath.Join(r.root, rel)
	mode := os.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, []byte(content), mode); err != nil {
		return fmt.Errorf("restoring %s: %w", rel, err)
	}
	return nil
}

func (r *Repo) Status(_ context.Context) (string, error) {
	worktree, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("getting worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return "", fmt.Errorf("reading status: %w", err)
	}
	if status.IsClean() {
		return "nothing to commit, working tree clean\n", nil
	}
	return status.String(), nil
}
