package source

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sokinpui/ghost/internal/prompt"
	"github.com/sokinpui/ghost/internal/ui"
)

func TestGetDirective(t *testing.T) {
	prev := ui.Out
	ui.Out = io.Discard
	t.Cleanup(func() { ui.Out = prev })

	clip := func(text string, err error) func() (string, error) {
		return func() (string, error) { return text, err }
	}

	tests := []struct {
		name      string
		flag      string
		piped     string
		clipboard bool
		clip      func() (string, error)
		answers   []string
		want      string
		wantKind  Kind
		wantErr   string
	}{{
		name:     "flag wins",
		flag:     "add a backups section",
		piped:    "from stdin",
		answers:  []string{"typed"},
		want:     "add a backups section",
		wantKind: KindFlag,
	}, {
		name:      "stdin before clipboard",
		piped:     "document the new port\n",
		clipboard: true,
		clip:      clip("from clipboard", nil),
		want:      "document the new port\n",
		wantKind:  KindStdin,
	}, {
		name:      "clipboard",
		clipboard: true,
		clip:      clip("from clipboard", nil),
		want:      "from clipboard",
		wantKind:  KindClipboard,
	}, {
		name:      "clipboard error",
		clipboard: true,
		clip:      clip("", errors.New("no xclip")),
		wantKind:  KindClipboard,
		wantErr:   "failed to read from clipboard: no xclip",
	}, {
		name:     "interactive",
		answers:  []string{"  quit  "},
		want:     "quit",
		wantKind: KindPrompt,
	}, {
		name:     "blank flag falls through",
		flag:     "   ",
		answers:  []string{"typed"},
		want:     "typed",
		wantKind: KindPrompt,
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			sp := &SourceProvider{
				Piped:         tc.piped != "",
				Stdin:         strings.NewReader(tc.piped),
				ReadClipboard: tc.clip,
				Prompter:      &prompt.Scripted{Answers: tc.answers},
			}
			got, kind, err := sp.GetDirective(tc.flag, tc.clipboard)
			require.Equal(t, tc.wantKind, kind)
			if tc.wantErr != "" {
				require.EqualError(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}
