// Package state keeps a journal of ghost runs under the working directory.
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/sokinpui/ghost/model"
)

const (
	stateDirName  = ".ghost"
	stateFileName = "history.json"
	// MaxEntries bounds the journal; older entries are dropped first.
	MaxEntries = 200
)

// Entry records one complete run.
type Entry struct {
	Timestamp  int64             `json:"timestamp"`
	Mode       model.Mode        `json:"mode"`
	Path       string            `json:"path"`
	Directive  string            `json:"directive"`
	HashBefore string            `json:"hash_before,omitempty"`
	HashAfter  string            `json:"hash_after,omitempty"`
	Applied    int               `json:"applied"`
	Skipped    int               `json:"skipped"`
	Added      int               `json:"added"`
	Removed    int               `json:"removed"`
	Run        model.RunState    `json:"run"`
	Review     model.ReviewState `json:"review,omitempty"`
	Commit     model.CommitState `json:"commit,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// State is the journal file.
type State struct {
	History []Entry `json:"history"`
}

// Manager handles the lifecycle of the journal file.
type Manager struct {
	statePath string
	state     *State
	StateDir  string
	now       func() time.Time
}

// New creates and loads the journal in dir/.ghost.
func New(dir string) (*Manager, error) {
	stateDir := filepath.Join(dir, stateDirName)
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create state directory: %w", err)
	}
	// Keep the journal out of "stage all" commits.
	ignore := filepath.Join(stateDir, ".gitignore")
	if _, err := os.Stat(ignore); os.IsNotExist(err) {
		if err := os.WriteFile(ignore, []byte("*\n"), 0o644); err != nil {
			return nil, fmt.Errorf("could not create %s: %w", ignore, err)
		}
	}
	m := &Manager{
		statePath: filepath.Join(stateDir, stateFileName),
		StateDir:  stateDir,
		now:       time.Now,
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// Path is the journal file location.
func (m *Manager) Path() string { return m.statePath }

func (m *Manager) load() error {
	data, err := os.ReadFile(m.statePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = &State{History: []Entry{}}
			return nil
		}
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		m.state = &State{History: []Entry{}}
		return nil
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid state file %s: %w", m.statePath, err)
	}
	if s.History == nil {
		s.History = []Entry{}
	}
	m.state = &s
	return nil
}

func (m *Manager) save() error {
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(m.statePath, bytes.NewReader(append(data, '\n'))); err != nil {
		return fmt.Errorf("could not write state file: %w", err)
	}
	return nil
}

// Write stamps entry with the current time and appends it to the journal.
func (m *Manager) Write(entry Entry) error {
	entry.Timestamp = m.now().UTC().Unix()
	m.state.History = append(m.state.History, entry)
	if n := len(m.state.History); n > MaxEntries {
		m.state.History = m.state.History[n-MaxEntries:]
	}
	return m.save()
}

// Recent returns up to n entries, newest first. n <= 0 returns all of them.
func (m *Manager) Recent(n int) []Entry {
	h := m.state.History
	if n <= 0 || n > len(h) {
		n = len(h)
	}
	out := make([]Entry, 0, n)
	for i := len(h) - 1; i >= len(h)-n; i-- {
		out = append(out, h[i])
	}
	return out
}

// NewEntry builds the journal record for a finished run.
func NewEntry(summary model.Summary, directive, hashBefore, hashAfter string) Entry {
	return Entry{
		Mode:       summary.Mode,
		Path:       summary.Path,
		Directive:  directive,
		HashBefore: hashBefore,
		HashAfter:  hashAfter,
		Applied:    len(summary.Apply.Applied),
		Skipped:    len(summary.Apply.Skipped),
		Added:      summary.Diff.Added,
		Removed:    summary.Diff.Removed,
		Run:        summary.Run,
		Review:     summary.Review,
		Commit:     summary.Commit,
		Message:    summary.Message,
	}
}
