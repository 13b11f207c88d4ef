// Package review gates document changes behind operator approval: a diff with
// a keep-or-revert decision, then an optional commit.
package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/waigani/diffparser"

	"github.com/sokinpui/ghost/internal/prompt"
	"github.com/sokinpui/ghost/internal/ui"
	"github.com/sokinpui/ghost/internal/vcs"
	"github.com/sokinpui/ghost/model"
)

// ErrEmptyCommitMessage is returned when the operator confirms a commit but gives no message.
var ErrEmptyCommitMessage = errors.New("commit message cannot be empty")

const (
	keepQuestion    = "Keep these changes?"
	commitQuestion  = "Commit these changes?"
	messageQuestion = "Enter the commit message"
)

// Gate runs the review and commit steps against a VCS.
type Gate struct {
	vcs    vcs.VCS
	prompt prompt.Prompter
}

// New creates a Gate.
func New(v vcs.VCS, p prompt.Prompter) *Gate {
	return &Gate{vcs: v, prompt: p}
}

// Review shows the working-tree diff for path. When requireKeep is set the
// operator decides whether to keep the change; declining reverts path.
// An empty diff is accepted without asking.
func (g *Gate) Review(ctx context.Context, path string, requireKeep bool) (model.ReviewState, model.DiffStats, error) {
	log := clog.FromContext(ctx)

	diff, err := g.vcs.Diff(ctx, path)
	if err != nil {
		return model.ReviewPending, model.DiffStats{}, fmt.Errorf("diff %s: %w", path, err)
	}

	ui.Header("\n--- Changes ---")
	ui.Diff(diff)

	if strings.TrimSpace(diff) == "" {
		log.Info("no changes to review")
		return model.ReviewAccepted, model.DiffStats{}, nil
	}

	stats := Stats(ctx, diff)
	stats.Changed = true
	log.Debug("diff parsed", "added", stats.Added, "removed", stats.Removed)

	if !requireKeep {
		return model.ReviewAccepted, stats, nil
	}
	if g.prompt.Confirm(keepQuestion) {
		return model.ReviewAccepted, stats, nil
	}

	if err := g.vcs.Revert(ctx, path); err != nil {
		return model.ReviewPending, stats, fmt.Errorf("revert %s: %w", path, err)
	}
	ui.Warning("Changes to %s reverted.", path)
	log.Info("changes reverted")
	return model.ReviewReverted, stats, nil
}

// Commit asks whether to commit, then for a message, then stages everything
// and commits. Declining leaves the working tree modified.
func (g *Gate) Commit(ctx context.Context) (model.CommitState, error) {
	log := clog.FromContext(ctx)

	if !g.prompt.Confirm(commitQuestion) {
		ui.Info("Changes left uncommitted.")
		return model.CommitSkipped, nil
	}

	message := g.prompt.Ask(messageQuestion)
	if message == "" {
		return model.CommitFailed, ErrEmptyCommitMessage
	}

	if err := g.vcs.StageAll(ctx); err != nil {
		return model.CommitFailed, fmt.Errorf("stage changes: %w", err)
	}
	if err := g.vcs.Commit(ctx, message); err != nil {
		return model.CommitFailed, fmt.Errorf("commit: %w", err)
	}
	ui.Success("Changes committed.")
	log.Info("changes committed", "message", message)

	status, err := g.vcs.Status(ctx)
	if err != nil {
		log.Warnf("failed to read status after commit: %v", err)
		return model.CommitCommitted, nil
	}
	ui.Header("\n--- Status ---")
	ui.Plain(status)
	return model.CommitCommitted, nil
}

// Stats counts added and removed lines in a unified diff. Text that does not
// parse counts as no change.
func Stats(ctx context.Context, diff string) model.DiffStats {
	var stats model.DiffStats
	if strings.TrimSpace(diff) == "" {
		return stats
	}

	parsed, err := diffparser.Parse(diff)
	if err != nil {
		clog.FromContext(ctx).Warnf("failed to parse diff: %v", err)
		return stats
	}
	for _, f := range parsed.Files {
		for _, h := range f.Hunks {
			for _, l := range h.NewRange.Lines {
				if l.Mode == diffparser.ADDED {
					stats.Added++
				}
			}
			for _, l := range h.OrigRange.Lines {
				if l.Mode == diffparser.REMOVED {
					stats.Removed++
				}
			}
		}
	}
	return stats
}
