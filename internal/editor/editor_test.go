package editor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sokinpui/ghost/model"
)

// memStore is an in-memory Store that counts writes.
type memStore struct {
	files    map[string]string
	writes   int
	writeErr error
}

func newMemStore(files map[string]string) *memStore {
	return &memStore{files: files}
}

func (m *memStore) Read(_ context.Context, path string) (string, error) {
	content, ok := m.files[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return content, nil
}

func (m *memStore) Write(_ context.Context, path, text string) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes++
	m.files[path] = text
	return nil
}

func (m *memStore) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func TestApplyMatchesSequentialReplacement(t *testing.T) {
	content := "alpha beta gamma\nbeta again\ndelta"
	edits := []model.Edit{
		{Old: "alpha", New: "ALPHA"},
		{Old: "beta", New: "BETA"},
		{Old: "delta", New: "DELTA"},
	}

	want := content
	for _, e := range edits {
		want = strings.ReplaceAll(want, e.Old, e.New)
	}

	got, result := Apply(content, edits)
	if got != want {
		t.Errorf("Apply() content mismatch (-want +got):\n%s", cmp.Diff(want, got))
	}
	if diff := cmp.Diff([]int{0, 1, 2}, result.Applied); diff != "" {
		t.Errorf("Applied mismatch (-want +got):\n%s", diff)
	}
	if len(result.Skipped) != 0 {
		t.Errorf("expected no skipped edits, got %+v", result.Skipped)
	}
}

func TestApplyUsesProgressivelyMutatedContent(t *testing.T) {
	got, result := Apply("one", []model.Edit{
		{Old: "one", New: "two"},
		{Old: "two", New: "three"},
	})
	if got != "three" {
		t.Errorf("Apply() = %q, want %q", got, "three")
	}
	if len(result.Applied) != 2 {
		t.Errorf("expected both edits applied, got %+v", result)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	edits := []model.Edit{
		{Old: "Old line", New: "New line"},
		{Old: "Draft", New: "Final"},
	}
	once, _ := Apply("# Draft\nOld line\n", edits)

	twice, result := Apply(once, edits)
	if twice != once {
		t.Errorf("second Apply changed content:\n%s", cmp.Diff(once, twice))
	}
	if len(result.Applied) != 0 {
		t.Errorf("expected nothing applied, got %v", result.Applied)
	}
	if len(result.Skipped) != len(edits) {
		t.Fatalf("expected %d skipped, got %d", len(edits), len(result.Skipped))
	}
	for i, s := range result.Skipped {
		if s.Index != i || s.Reason != reasonNotFound {
			t.Errorf("skipped[%d] = %+v", i, s)
		}
	}
}

func TestApplySkipsEmptyOld(t *testing.T) {
	got, result := Apply("abc", []model.Edit{{Old: "", New: "x"}})
	if got != "abc" {
		t.Errorf("Apply() = %q, want unchanged", got)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Reason != reasonEmptyOld {
		t.Errorf("expected empty-old skip, got %+v", result.Skipped)
	}
}

func TestApplyToFilePartialMatchWritesOnce(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(map[string]string{"README.md": "# Title\nfirst\nsecond\n"})
	engine := New(store)

	result, err := engine.ApplyToFile(ctx, "README.md", []model.Edit{
		{Old: "first", New: "1st"},
		{Old: "missing", New: "nope"},
		{Old: "second", New: "2nd"},
	})
	if err != nil {
		t.Fatalf("ApplyToFile: %v", err)
	}
	if store.writes != 1 {
		t.Errorf("expected exactly one write, got %d", store.writes)
	}
	if want := "# Title\n1st\n2nd\n"; store.files["README.md"] != want {
		t.Errorf("content = %q, want %q", store.files["README.md"], want)
	}
	if diff := cmp.Diff([]int{0, 2}, result.Applied); diff != "" {
		t.Errorf("Applied mismatch (-want +got):\n%s", diff)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Index != 1 {
		t.Errorf("expected edit #2 skipped, got %+v", result.Skipped)
	}
}

func TestApplyToFileEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore(map[string]string{"README.md": "# Title\nOld line"})

	if _, err := New(store).ApplyToFile(ctx, "README.md", []model.Edit{{Old: "Old line", New: "New line"}}); err != nil {
		t.Fatalf("ApplyToFile: %v", err)
	}
	if got, want := store.files["README.md"], "# Title\nNew line"; got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestApplyToFileMissingDocument(t *testing.T) {
	store := newMemStore(map[string]string{})
	_, err := New(store).ApplyToFile(context.Background(), "README.md", []model.Edit{{Old: "a", New: "b"}})
	if !errors.Is(err, ErrDocumentMissing) {
		t.Fatalf("expected ErrDocumentMissing, got %v", err)
	}
	if store.writes != 0 {
		t.Errorf("expected no writes, got %d", store.writes)
	}
}

func TestApplyToFileWriteFailure(t *testing.T) {
	store := newMemStore(map[string]string{"README.md": "a"})
	store.writeErr = errors.New("disk full")

	_, err := New(store).ApplyToFile(context.Background(), "README.md", []model.Edit{{Old: "a", New: "b"}})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error, got %v", err)
	}
	if store.files["README.md"] != "a" {
		t.Errorf("content changed despite write failure")
	}
}

func TestReplaceInFile(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		files      map[string]string
		old, new   string
		wantErr    error
		wantWrites int
		want       string
	}{
		{
			name:    "old text absent",
			files:   map[string]string{"doc.md": "Hello World"},
			old:     "Goodbye",
			new:     "Hi",
			wantErr: ErrOldTextNotFound,
			want:    "Hello World",
		},
		{
			name:    "missing file",
			files:   map[string]string{},
			old:     "Hello",
			new:     "Hi",
			wantErr: ErrDocumentMissing,
		},
		{
			name:    "empty old text",
			files:   map[string]string{"doc.md": "Hello World"},
			old:     "",
			new:     "Hi",
			wantErr: ErrOldTextNotFound,
			want:    "Hello World",
		},
		{
			name:       "replaces every occurrence",
			files:      map[string]string{"doc.md": "Hello World, Hello Moon"},
			old:        "Hello",
			new:        "Hi",
			wantWrites: 1,
			want:       "Hi World, Hi Moon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore(tt.files)
			err := New(store).ReplaceInFile(ctx, "doc.md", tt.old, tt.new)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ReplaceInFile() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("ReplaceInFile() unexpected error: %v", err)
			}
			if store.writes != tt.wantWrites {
				t.Errorf("writes = %d, want %d", store.writes, tt.wantWrites)
			}
			if got := store.files["doc.md"]; got != tt.want {
				t.Errorf("content = %q, want %q", got, tt.want)
			}
		})
	}
}
