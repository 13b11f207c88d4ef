// Package prompt asks the operator questions.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/sokinpui/ghost/internal/ui"
)

// Prompter asks yes/no and free-text questions.
type Prompter interface {
	// Confirm asks a yes/no question. Anything but an explicit yes is a no.
	Confirm(question string) bool
	// Ask asks a free-text question and returns the trimmed answer.
	Ask(question string) string
}

// IsAffirmative reports whether answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Terminal prompts on an output stream and reads answers line by line.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminal creates a Terminal reading from in and writing prompts to out.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

func (t *Terminal) Confirm(question string) bool {
	return IsAffirmative(t.Ask(question + " (y/N)"))
}

func (t *Terminal) Ask(question string) string {
	if question == "" {
		fmt.Fprint(t.out, ui.Prompt("\n> "))
	} else {
		fmt.Fprint(t.out, ui.Prompt("\n%s > ", question))
	}
	line, err := t.in.ReadString('\n')
	if err != nil && line == "" {
		// EOF or a closed input reads as an empty answer.
		return ""
	}
	return strings.TrimSpace(line)
}

// Scripted answers from a fixed list, in order. It records every question.
type Scripted struct {
	Answers   []string
	Questions []string
}

func (s *Scripted) next(question string) string {
	s.Questions = append(s.Questions, question)
	if len(s.Answers) == 0 {
		return ""
	}
	answer := s.Answers[0]
	s.Answers = s.Answers[1:]
	return answer
}

func (s *Scripted) Confirm(question string) bool {
	return IsAffirmative(s.next(question))
}

func (s *Scripted) Ask(question string) string {
	return strings.TrimSpace(s.next(question))
}
