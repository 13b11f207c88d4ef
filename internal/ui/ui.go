package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/sokinpui/ghost/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)
	AddedColor   = color.New(color.FgGreen)
	RemovedColor = color.New(color.FgRed)
	HunkColor    = color.New(color.FgCyan)
)

// Out receives all operator-facing output.
var Out io.Writer = os.Stderr

const rule = "============================================================"

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(Out, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(Out, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(Out, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(Out, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(Out, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(Out, "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// Banner prints a title framed by horizontal rules.
func Banner(title string) {
	HeaderColor.Fprintln(Out, rule)
	HeaderColor.Fprintln(Out, title)
	HeaderColor.Fprintln(Out, rule)
}

// Plain writes text without decoration.
func Plain(text string) {
	fmt.Fprint(Out, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(Out)
	}
}

// --- Diffs ---

// Diff prints unified diff text, colouring added, removed and hunk lines.
func Diff(text string) {
	if strings.TrimSpace(text) == "" {
		Info("No differences.")
		return
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			HeaderColor.Fprintln(Out, line)
		case strings.HasPrefix(line, "@@"):
			HunkColor.Fprintln(Out, line)
		case strings.HasPrefix(line, "+"):
			AddedColor.Fprintln(Out, line)
		case strings.HasPrefix(line, "-"):
			RemovedColor.Fprintln(Out, line)
		default:
			fmt.Fprintln(Out, line)
		}
	}
}

// --- Summaries ---

// PrintApplySummary reports which edits were applied and which were skipped.
func PrintApplySummary(path string, total int, result model.ApplyResult) {
	Header("\n--- Edit Summary ---")
	if total == 0 {
		Info("The model proposed no edits.")
		return
	}

	if len(result.Applied) > 0 {
		Success("Applied %d of %d edit(s) to %s", len(result.Applied), total, path)
	}
	if len(result.Skipped) > 0 {
		Warning("Skipped %d edit(s):", len(result.Skipped))
		for _, s := range result.Skipped {
			fmt.Fprintf(Out, "  - #%d %s: %q\n", s.Index+1, s.Reason, truncate(s.Edit.Old, 60))
			if s.NearLine > 0 {
				fmt.Fprintf(Out, "      similar text found at line %d (whitespace differs)\n", s.NearLine)
			}
		}
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
