// Package editor applies literal old-text to new-text substitutions to documents.
package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/sokinpui/ghost/model"
)

var (
	// ErrDocumentMissing is returned when the target document does not exist.
	ErrDocumentMissing = errors.New("document does not exist")
	// ErrOldTextNotFound is returned by ReplaceInFile when the old text is absent.
	ErrOldTextNotFound = errors.New("old text not found in document")
)

const (
	reasonNotFound = "old text not found"
	reasonEmptyOld = "empty old text"
)

// Store is the subset of the content store the engine needs.
type Store interface {
	Read(ctx context.Context, path string) (string, error)
	Write(ctx context.Context, path, text string) error
	Exists(path string) bool
}

// Engine applies edits to documents held in a Store.
type Engine struct {
	store Store
}

// New creates an Engine backed by store.
func New(store Store) *Engine {
	return &Engine{store: store}
}

// Apply runs edits in order against content and returns the result. Each edit
// sees the content as left by the edits before it. An edit whose old text is
// absent is skipped; the rest still run.
func Apply(content string, edits []model.Edit) (string, model.ApplyResult) {
	var result model.ApplyResult
	for i, edit := range edits {
		if edit.Old == "" {
			result.Skipped = append(result.Skipped, model.SkippedEdit{Index: i, Edit: edit, Reason: reasonEmptyOld})
			continue
		}
		if !strings.Contains(content, edit.Old) {
			result.Skipped = append(result.Skipped, model.SkippedEdit{
				Index:    i,
				Edit:     edit,
				Reason:   reasonNotFound,
				NearLine: nearMatch(content, edit.Old),
			})
			continue
		}
		content = strings.ReplaceAll(content, edit.Old, edit.New)
		result.Applied = append(result.Applied, i)
	}
	return content, result
}

// ReplaceInFile replaces every occurrence of old with new in path. Nothing is
// written if the file is missing or old does not occur in it.
func (e *Engine) ReplaceInFile(ctx context.Context, path, old, new string) error {
	if !e.store.Exists(path) {
		return fmt.Errorf("%w: %s", ErrDocumentMissing, path)
	}
	content, err := e.store.Read(ctx, path)
	if err != nil {
		return err
	}
	if old == "" || !strings.Contains(content, old) {
		clog.FromContext(ctx).Warnf("old text not found: %q", old)
		return fmt.Errorf("%w: %s", ErrOldTextNotFound, path)
	}
	return e.store.Write(ctx, path, strings.ReplaceAll(content, old, new))
}

// ApplyToFile applies edits to the document at path and writes the cumulative
// result once. It fails only if the document is missing or cannot be read or
// written; skipped edits are reported in the result and logged.
func (e *Engine) ApplyToFile(ctx context.Context, path string, edits []model.Edit) (model.ApplyResult, error) {
	log := clog.FromContext(ctx)

	if !e.store.Exists(path) {
		return model.ApplyResult{}, fmt.Errorf("%w: %s", ErrDocumentMissing, path)
	}
	content, err := e.store.Read(ctx, path)
	if err != nil {
		return model.ApplyResult{}, err
	}

	updated, result := Apply(content, edits)
	for _, s := range result.Skipped {
		log.With("edit", s.Index+1, "near_line", s.NearLine).Warnf("skipping edit: %s", s.Reason)
	}
	log.With("applied", len(result.Applied), "skipped", len(result.Skipped)).Info("edits applied in memory")

	if err := e.store.Write(ctx, path, updated); err != nil {
		return result, err
	}
	return result, nil
}
