// Package ghost runs G.H.O.S.T., the Guardian, Host, and Operational Scribe
// Tool: it turns an operator directive into changes to a documentation file,
// then gates keeping and committing them.
package ghost

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/chainguard-dev/clog"

	"github.com/sokinpui/ghost/internal/config"
	"github.com/sokinpui/ghost/internal/directive"
	"github.com/sokinpui/ghost/internal/editor"
	"github.com/sokinpui/ghost/internal/llm"
	"github.com/sokinpui/ghost/internal/prompt"
	"github.com/sokinpui/ghost/internal/review"
	"github.com/sokinpui/ghost/internal/source"
	"github.com/sokinpui/ghost/internal/state"
	"github.com/sokinpui/ghost/internal/store"
	"github.com/sokinpui/ghost/internal/tui"
	"github.com/sokinpui/ghost/internal/ui"
	"github.com/sokinpui/ghost/internal/vcs"
	"github.com/sokinpui/ghost/model"
)

const (
	title           = "G.H.O.S.T. v1 - Documentation Manager"
	proceedQuestion = "Proceed with this directive?"
	processingLabel = "Processing directive..."
	exitingMessage  = "Exiting G.H.O.S.T..."
)

// App orchestrates a single run.
type App struct {
	cfg          config.Config
	store        *store.Store
	editor       *editor.Engine
	processor    *directive.Processor
	gate         *review.Gate
	prompter     prompt.Prompter
	source       *source.SourceProvider
	stateManager *state.Manager

	gen directive.Generator
	vcs vcs.VCS
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error { return e.Err }

// Option customizes an App.
type Option func(*App)

// WithGenerator replaces the model client.
func WithGenerator(g directive.Generator) Option {
	return func(a *App) { a.gen = g }
}

// WithVCS replaces the version-control backend.
func WithVCS(v vcs.VCS) Option {
	return func(a *App) { a.vcs = v }
}

// WithPrompter replaces the terminal prompter.
func WithPrompter(p prompt.Prompter) Option {
	return func(a *App) { a.prompter = p }
}

// WithSource replaces the directive source.
func WithSource(s *source.SourceProvider) Option {
	return func(a *App) { a.source = s }
}

// New creates a new App instance from a validated configuration.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	a := &App{cfg: cfg}
	for _, opt := range opts {
		opt(a)
	}

	stateManager, err := state.New(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run journal: %w", err)
	}
	a.stateManager = stateManager

	if cfg.History > 0 {
		return a, nil
	}

	if a.prompter == nil {
		a.prompter = prompt.NewTerminal(os.Stdin, ui.Out)
	}
	if a.source == nil {
		a.source = source.New(a.prompter)
	}
	if a.gen == nil {
		gen, err := llm.New(ctx, cfg.LLMSettings())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize %s client: %w", cfg.Provider, err)
		}
		a.gen = gen
	}
	if a.vcs == nil {
		v, err := openVCS(cfg)
		if err != nil {
			return nil, err
		}
		a.vcs = v
	}

	a.store = store.New()
	a.editor = editor.New(a.store)
	a.processor = directive.New(a.gen)
	a.gate = review.New(a.vcs, a.prompter)
	return a, nil
}

func openVCS(cfg config.Config) (vcs.VCS, error) {
	switch cfg.VCS {
	case vcs.BackendGoGit:
		repo, err := vcs.OpenRepo(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open repository: %w", err)
		}
		return repo, nil
	case vcs.BackendGit, "":
		return vcs.NewGit(cfg.Dir, vcs.RunCommand), nil
	default:
		return nil, fmt.Errorf("unknown vcs backend %q", cfg.VCS)
	}
}

// Run executes one directive end to end, or prints the journal when History is set.
func (a *App) Run(ctx context.Context) (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	if a.cfg.History > 0 {
		return a.printHistory(a.cfg.History), nil
	}
	return a.processDirective(ctx)
}

// processDirective walks a run through idle, prompting and applied or failed,
// then the review and commit gates.
func (a *App) processDirective(ctx context.Context) (model.Summary, error) {
	log := clog.FromContext(ctx).With("mode", a.cfg.Mode, "path", a.cfg.Document)
	ctx = clog.WithLogger(ctx, log)

	summary := model.Summary{Mode: a.cfg.Mode, Path: a.cfg.Document, Run: model.RunIdle}

	policy, err := a.store.Read(ctx, a.cfg.Policy)
	if err != nil {
		return summary, fmt.Errorf("could not load policy: %w", err)
	}
	if policy == "" {
		return summary, fmt.Errorf("policy %s is empty", a.cfg.Policy)
	}
	content, err := a.store.Read(ctx, a.cfg.Document)
	if err != nil {
		return summary, fmt.Errorf("could not load document: %w", err)
	}

	ui.Banner(title)

	raw, kind, err := a.source.GetDirective(a.cfg.Directive, a.cfg.Clipboard)
	if err != nil {
		return summary, err
	}
	text, err := directive.Normalize(raw)
	if errors.Is(err, directive.ErrQuit) {
		summary.Message = exitingMessage
		return summary, nil
	}
	if err != nil {
		return summary, err
	}

	if kind == source.KindStdin || kind == source.KindClipboard {
		ui.Info("Directive:")
		ui.Plain(text)
		if !a.prompter.Confirm(proceedQuestion) {
			summary.Message = exitingMessage
			return summary, nil
		}
	}

	hashBefore := a.store.Hash(a.cfg.Document)
	summary.Run = model.RunPrompting
	log.Info("processing directive")

	proposal, err := tui.Run(ctx, processingLabel, !a.cfg.NoAnimation, func(ctx context.Context) (directive.Proposal, error) {
		return a.processor.Process(ctx, directive.Request{
			Mode:      a.cfg.Mode,
			Policy:    policy,
			Path:      a.cfg.Document,
			Content:   content,
			Directive: text,
		})
	})
	if err != nil {
		return a.fail(ctx, summary, text, hashBefore, err)
	}

	if err := a.apply(ctx, &summary, proposal); err != nil {
		return a.fail(ctx, summary, text, hashBefore, err)
	}
	summary.Run = model.RunApplied

	requireKeep := a.cfg.Mode == model.ModePatch || a.cfg.ConfirmReplace
	reviewState, stats, err := a.gate.Review(ctx, a.cfg.Document, requireKeep)
	summary.Review = reviewState
	summary.Diff = stats
	if err != nil {
		return a.finish(ctx, summary, text, hashBefore, err)
	}

	switch {
	case reviewState != model.ReviewAccepted:
		summary.Message = "Changes reverted, exiting..."
	case !stats.Changed:
		summary.Commit = model.CommitSkipped
		summary.Message = "No changes to commit, exiting..."
	default:
		commitState, err := a.gate.Commit(ctx)
		summary.Commit = commitState
		if err != nil {
			return a.finish(ctx, summary, text, hashBefore, err)
		}
		if commitState == model.CommitCommitted {
			summary.Message = "Changes committed, exiting..."
		} else {
			summary.Message = "Changes not committed, exiting..."
		}
	}

	return a.finish(ctx, summary, text, hashBefore, nil)
}

// apply writes the proposal to the document.
func (a *App) apply(ctx context.Context, summary *model.Summary, proposal directive.Proposal) error {
	switch proposal.Mode {
	case model.ModeReplace:
		if err := a.store.Write(ctx, a.cfg.Document, proposal.Content); err != nil {
			return err
		}
		ui.Success("%s updated successfully", a.cfg.Document)
	case model.ModePatch:
		result, err := a.editor.ApplyToFile(ctx, a.cfg.Document, proposal.Edits)
		summary.Apply = result
		if err != nil {
			return err
		}
		ui.PrintApplySummary(a.cfg.Document, len(proposal.Edits), result)
	default:
		return fmt.Errorf("unknown mode %q", proposal.Mode)
	}
	return nil
}

func (a *App) fail(ctx context.Context, summary model.Summary, text, hashBefore string, err error) (model.Summary, error) {
	summary.Run = model.RunFailed
	return a.finish(ctx, summary, text, hashBefore, err)
}

// finish journals the run and passes err through.
func (a *App) finish(ctx context.Context, summary model.Summary, text, hashBefore string, err error) (model.Summary, error) {
	if err != nil && summary.Message == "" {
		summary.Message = err.Error()
	}
	entry := state.NewEntry(summary, text, hashBefore, a.store.Hash(a.cfg.Document))
	if jerr := a.stateManager.Write(entry); jerr != nil {
		clog.FromContext(ctx).Warnf("failed to write run journal: %v", jerr)
	}
	return summary, err
}

// printHistory prints the latest n journal entries.
func (a *App) printHistory(n int) model.Summary {
	entries := a.stateManager.Recent(n)
	if len(entries) == 0 {
		return model.Summary{Message: "No runs recorded yet."}
	}

	ui.Header("--- Recent runs (%s) ---", a.stateManager.Path())
	for _, e := range entries {
		ts := time.Unix(e.Timestamp, 0).Format(time.DateTime)
		outcome := string(e.Run)
		if e.Review != "" {
			outcome += "/" + string(e.Review)
		}
		if e.Commit != "" {
			outcome += "/" + string(e.Commit)
		}
		ui.Info("%s  %-7s  %-28s  +%d -%d", ts, e.Mode, outcome, e.Added, e.Removed)
		ui.Path("%s", e.Path)
		ui.Plain("    " + e.Directive)
	}
	return model.Summary{Message: fmt.Sprintf("%d run(s) shown.", len(entries))}
}
