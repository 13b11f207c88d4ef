package directive

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/sokinpui/ghost/model"
)

type fakeGenerator struct {
	response     string
	err          error
	calls        int
	instructions string
	directive    string
}

func (f *fakeGenerator) Generate(_ context.Context, instructions, directive string) (string, error) {
	f.calls++
	f.instructions = instructions
	f.directive = directive
	return f.response, f.err
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{in: "  add a backup section ", want: "add a backup section"},
		{in: "", wantErr: ErrEmptyDirective},
		{in: "   \n", wantErr: ErrEmptyDirective},
		{in: "quit", wantErr: ErrQuit},
		{in: "EXIT", wantErr: ErrQuit},
		{in: " q ", wantErr: ErrQuit},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr != nil {
			require.ErrorIs(t, err, tt.wantErr, "Normalize(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		require.Equal(t, tt.want, got)
	}
}

func TestInstructionsEmbedPolicyAndContent(t *testing.T) {
	content := "# Server\n\n```sh\nmake run\n```\n"
	got := Instructions(model.ModeReplace, "Be terse.\n", "/srv/README.md", content)

	require.Contains(t, got, "Be terse.")
	require.Contains(t, got, "### CURRENT README.MD CONTENT:")
	require.Contains(t, got, "````markdown\n"+content+"````\n", "content must be fenced with a longer fence")
	require.Contains(t, got, "output the updated README.md file")
	require.NotContains(t, got, "JSON object")
}

func TestInstructionsPatchModeIncludesSchema(t *testing.T) {
	got := Instructions(model.ModePatch, "policy", "README.md", "body")
	require.Contains(t, got, "```markdown\nbody\n```")
	require.Contains(t, got, "Respond only with a JSON object")
	require.Contains(t, got, `"edits"`)
	require.Contains(t, got, `"old"`)
	require.Contains(t, got, `"new"`)
}

func TestProcessReplace(t *testing.T) {
	gen := &fakeGenerator{response: "```markdown\n# Title\nNew line\n```"}
	p := New(gen)

	proposal, err := p.Process(context.Background(), Request{
		Mode:      model.ModeReplace,
		Policy:    "policy",
		Path:      "README.md",
		Content:   "# Title\nOld line\n",
		Directive: "update the line",
	})
	require.NoError(t, err)
	require.Equal(t, 1, gen.calls)
	require.Equal(t, "update the line", gen.directive)
	require.Contains(t, gen.instructions, "Old line")
	require.Equal(t, "# Title\nNew line\n", proposal.Content)
	require.Empty(t, proposal.Edits)
}

func TestProcessPatch(t *testing.T) {
	gen := &fakeGenerator{response: "Here you go:\n\n```json\n{\"edits\":[{\"old\":\"Old line\",\"new\":\"New line\"}]}\n```\n"}

	proposal, err := New(gen).Process(context.Background(), Request{Mode: model.ModePatch, Directive: "x"})
	require.NoError(t, err)
	if diff := cmp.Diff([]model.Edit{{Old: "Old line", New: "New line"}}, proposal.Edits); diff != "" {
		t.Errorf("edits mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessFailures(t *testing.T) {
	boom := errors.New("quota exceeded")

	t.Run("generator error is not retried", func(t *testing.T) {
		gen := &fakeGenerator{err: boom}
		_, err := New(gen).Process(context.Background(), Request{Mode: model.ModePatch})
		require.ErrorIs(t, err, boom)
		require.Equal(t, 1, gen.calls)
	})

	t.Run("empty response", func(t *testing.T) {
		gen := &fakeGenerator{response: "  \n"}
		_, err := New(gen).Process(context.Background(), Request{Mode: model.ModeReplace})
		require.ErrorIs(t, err, ErrEmptyResponse)
	})

	t.Run("malformed patch response", func(t *testing.T) {
		gen := &fakeGenerator{response: "I could not decide."}
		_, err := New(gen).Process(context.Background(), Request{Mode: model.ModePatch})
		var perr *ParseError
		require.ErrorAs(t, err, &perr)
	})
}

func TestParseEdits(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []model.Edit
		wantErr  string
	}{
		{
			name:     "bare object",
			response: `{"edits":[{"old":"a","new":"b"},{"old":"c","new":""}]}`,
			want:     []model.Edit{{Old: "a", New: "b"}, {Old: "c", New: ""}},
		},
		{
			name:     "json fence among prose",
			response: "Sure.\n\n```json\n{\"edits\":[{\"old\":\"a\",\"new\":\"b\"}]}\n```\nDone.",
			want:     []model.Edit{{Old: "a", New: "b"}},
		},
		{
			name:     "unlabelled sole fence",
			response: "```\n{\"edits\":[]}\n```",
			want:     []model.Edit{},
		},
		{
			name:     "object after prose without fence",
			response: "Result: {\"edits\":[{\"old\":\"x\",\"new\":\"y\"}]} end",
			want:     []model.Edit{{Old: "x", New: "y"}},
		},
		{
			name:     "not json",
			response: "no edits today",
			wantErr:  "no JSON object found",
		},
		{
			name:     "array instead of object",
			response: `[{"old":"a","new":"b"}]`,
			wantErr:  `missing "edits" field`,
		},
		{
			name:     "missing edits field",
			response: `{"changes":[]}`,
			wantErr:  `missing "edits" field`,
		},
		{
			name:     "edits is null",
			response: `{"edits":null}`,
			wantErr:  `"edits" is not an array of objects`,
		},
		{
			name:     "edits is a string",
			response: `{"edits":"old->new"}`,
			wantErr:  `"edits" is not an array of objects`,
		},
		{
			name:     "missing new",
			response: `{"edits":[{"old":"a","new":"b"},{"old":"c"}]}`,
			wantErr:  `edit #2: missing "new" field`,
		},
		{
			name:     "numeric old",
			response: `{"edits":[{"old":1,"new":"b"}]}`,
			wantErr:  `edit #1: "old" is not a string`,
		},
		{
			name:     "null new",
			response: `{"edits":[{"old":"a","new":null}]}`,
			wantErr:  `edit #1: "new" is not a string`,
		},
		{
			name:     "null edit",
			response: `{"edits":[null]}`,
			wantErr:  "edit #1: edit is not an object",
		},
		{
			name:     "empty",
			response: "",
			wantErr:  "response is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEdits(tt.response)
			if tt.wantErr != "" {
				var perr *ParseError
				require.ErrorAs(t, err, &perr)
				require.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got.Edits); diff != "" {
				t.Errorf("ParseEdits() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUnwrapDocument(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced markdown", "```markdown\n# T\n\nbody\n```\n", "# T\n\nbody\n"},
		{"plain document", "# T\n\nbody\n", "# T\n\nbody\n"},
		{"fence inside document", "# T\n\n```sh\nls\n```\n\nmore\n", "# T\n\n```sh\nls\n```\n\nmore\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, UnwrapDocument(tt.in))
		})
	}
}

func TestExtractCodeBlocks(t *testing.T) {
	src := "intro\n\n```go\nfunc main() {}\n```\n\ntext\n\n```json\n{}\n```\n"
	blocks, err := ExtractCodeBlocks([]byte(src))
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	require.Equal(t, "go", blocks[0].Lang)
	require.Equal(t, "func main() {}\n", blocks[0].Content)
	require.Equal(t, "json", blocks[1].Lang)
	require.True(t, strings.HasPrefix(blocks[1].Content, "{}"))
}

func TestFence(t *testing.T) {
	require.Equal(t, "```", fence("no backticks"))
	require.Equal(t, "```", fence("inline `code` only"))
	require.Equal(t, "````", fence("```sh\nls\n```"))
	require.Equal(t, "``````", fence("`````"))
}
