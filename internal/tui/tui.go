package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sokinpui/ghost/internal/ui"
	"github.com/sokinpui/ghost/model"
)

// --- Styles ---
var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))  // Mauve
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))             // Green
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))            // Orange
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))            // Red
	pathStyle    = lipgloss.NewStyle()
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// --- Messages ---
type doneMsg struct{}

// --- Model ---
type Model struct {
	spinner spinner.Model
	label   string
	done    bool
}

func New(label string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{spinner: s, label: label}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit
	default:
		var cmd tea.Cmd
		if !m.done {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd
	}
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

// Run calls fn while a spinner labelled label renders. Without animation the
// label is printed once instead. fn runs on the calling goroutine.
func Run[T any](ctx context.Context, label string, animate bool, fn func(context.Context) (T, error)) (T, error) {
	if !animate {
		ui.Header("\n%s", label)
		return fn(ctx)
	}

	p := tea.NewProgram(New(label),
		tea.WithContext(ctx),
		tea.WithOutput(ui.Out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if _, err := p.Run(); err != nil {
			clog.FromContext(ctx).Debugf("spinner stopped: %v", err)
		}
	}()
	defer func() {
		p.Send(doneMsg{})
		<-finished
	}()

	return fn(ctx)
}

// RenderSummary formats the outcome of a run.
func RenderSummary(s model.Summary) string {
	var b strings.Builder

	if s.Message != "" {
		b.WriteString(headerStyle.Render(s.Message))
		b.WriteString("\n\n")
	}

	if s.Path != "" {
		b.WriteString(fmt.Sprintf("%s %s (%s mode)\n", faintStyle.Render("Document:"), pathStyle.Render(s.Path), s.Mode))
	}

	switch s.Run {
	case model.RunFailed:
		b.WriteString(errorStyle.Render("Run failed."))
		b.WriteString("\n")
		return b.String()
	case model.RunIdle, model.RunPrompting, "":
		if s.Message == "" {
			b.WriteString(faintStyle.Render("Nothing to do."))
			b.WriteString("\n")
		}
		return b.String()
	}

	if s.Mode == model.ModePatch {
		b.WriteString(successStyle.Render(fmt.Sprintf("Applied: %d", len(s.Apply.Applied))))
		if n := len(s.Apply.Skipped); n > 0 {
			b.WriteString("  ")
			b.WriteString(warningStyle.Render(fmt.Sprintf("Skipped: %d", n)))
		}
		b.WriteString("\n")
	}

	if s.Diff.Empty() {
		b.WriteString(faintStyle.Render("No changes."))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n",
			successStyle.Render(fmt.Sprintf("+%d", s.Diff.Added)),
			errorStyle.Render(fmt.Sprintf("-%d", s.Diff.Removed))))
	}

	switch s.Review {
	case model.ReviewReverted:
		b.WriteString(warningStyle.Render("Changes reverted."))
		b.WriteString("\n")
	case model.ReviewAccepted:
		switch s.Commit {
		case model.CommitCommitted:
			b.WriteString(successStyle.Render("Changes committed."))
		case model.CommitFailed:
			b.WriteString(errorStyle.Render("Commit failed."))
		default:
			b.WriteString(faintStyle.Render("Changes kept, not committed."))
		}
		b.WriteString("\n")
	}

	return b.String()
}
