package ghost

import (
	"context"

	"github.com/chainguard-dev/clog"

	"github.com/sokinpui/ghost/internal/editor"
	"github.com/sokinpui/ghost/internal/store"
	"github.com/sokinpui/ghost/model"
)

// ApplyEdits applies edits to the document at path without involving a model
// or version control. The file is written once; edits whose old text is absent
// are skipped and reported in the result.
func ApplyEdits(ctx context.Context, path string, edits []model.Edit) (model.ApplyResult, error) {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("path", path))
	return editor.New(store.New()).ApplyToFile(ctx, path, edits)
}

// ReplaceText replaces every occurrence of old with new in the document at path.
// It fails without writing if the document is missing or old does not occur.
func ReplaceText(ctx context.Context, path, old, new string) error {
	ctx = clog.WithLogger(ctx, clog.FromContext(ctx).With("path", path))
	return editor.New(store.New()).ReplaceInFile(ctx, path, old, new)
}
