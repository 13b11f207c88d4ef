// Package source obtains the operator's directive.
package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/sokinpui/ghost/internal/prompt"
	"github.com/sokinpui/ghost/internal/ui"
)

// Kind names where a directive came from.
type Kind string

const (
	KindFlag      Kind = "flag"
	KindStdin     Kind = "stdin"
	KindClipboard Kind = "clipboard"
	KindPrompt    Kind = "prompt"
)

// SourceProvider determines and retrieves the directive.
type SourceProvider struct {
	// Stdin is read when Piped is set.
	Stdin io.Reader
	Piped bool
	// ReadClipboard returns the clipboard text.
	ReadClipboard func() (string, error)
	Prompter      prompt.Prompter
}

// New creates a SourceProvider for the process's stdin and the system clipboard.
func New(p prompt.Prompter) *SourceProvider {
	return &SourceProvider{
		Stdin:         os.Stdin,
		Piped:         IsPiped(os.Stdin),
		ReadClipboard: clipboard.ReadAll,
		Prompter:      p,
	}
}

// IsPiped reports whether f is a pipe or file rather than a terminal.
func IsPiped(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// GetDirective returns the directive from, in order: flagValue, piped stdin,
// the clipboard when useClipboard is set, or an interactive prompt.
func (sp *SourceProvider) GetDirective(flagValue string, useClipboard bool) (string, Kind, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, KindFlag, nil
	}

	if sp.Piped && sp.Stdin != nil {
		ui.Header("--- Reading directive from stdin ---")
		content, err := io.ReadAll(sp.Stdin)
		if err != nil {
			return "", KindStdin, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return string(content), KindStdin, nil
	}

	if useClipboard {
		ui.Header("--- Reading directive from clipboard ---")
		content, err := sp.ReadClipboard()
		if err != nil {
			return "", KindClipboard, fmt.Errorf("failed to read from clipboard: %w", err)
		}
		if strings.TrimSpace(content) == "" {
			ui.Warning("Clipboard is empty.")
		}
		return content, KindClipboard, nil
	}

	ui.Plain("\nEnter your directive (or 'quit' to exit):")
	ui.Plain(strings.Repeat("-", 60))
	return sp.Prompter.Ask(""), KindPrompt, nil
}
