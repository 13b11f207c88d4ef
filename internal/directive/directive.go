// Package directive turns an operator directive into a proposed document change
// by consulting a text generator.
package directive

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/chainguard-dev/clog"

	"github.com/sokinpui/ghost/model"
)

var (
	// ErrEmptyDirective is returned when the operator gave no directive.
	ErrEmptyDirective = errors.New("no directive provided")
	// ErrQuit is returned when the operator asked to exit instead of giving a directive.
	ErrQuit = errors.New("operator quit")
	// ErrEmptyResponse is returned when the generator produced no text.
	ErrEmptyResponse = errors.New("generator returned an empty response")
)

// Generator produces text from an instruction context and a directive.
type Generator interface {
	Generate(ctx context.Context, instructions, directive string) (string, error)
}

// Request is everything needed to ask for a change.
type Request struct {
	Mode      model.Mode
	Policy    string
	Path      string
	Content   string
	Directive string
}

// Proposal is the generator's answer shaped by the request mode. Content is
// set in replace mode, Edits in patch mode.
type Proposal struct {
	Mode    model.Mode
	Content string
	Edits   []model.Edit
	Raw     string
}

// Normalize trims a directive and rejects empty or quit directives.
func Normalize(directive string) (string, error) {
	d := strings.TrimSpace(directive)
	switch strings.ToLower(d) {
	case "":
		return "", ErrEmptyDirective
	case "quit", "exit", "q":
		return "", ErrQuit
	}
	return d, nil
}

// Instructions builds the fixed instruction context: the policy followed by the
// current document embedded verbatim.
func Instructions(mode model.Mode, policy, path, content string) string {
	name := filepath.Base(path)
	f := fence(content)

	var b strings.Builder
	b.WriteString("You are G.H.O.S.T. (Guardian, Host, and Operational Scribe Tool).\n\n")
	b.WriteString(strings.TrimSpace(policy))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "### CURRENT %s CONTENT:\n", strings.ToUpper(name))
	fmt.Fprintf(&b, "%smarkdown\n%s", f, content)
	if !strings.HasSuffix(content, "\n") {
		b.WriteString("\n")
	}
	b.WriteString(f + "\n\n")

	switch mode {
	case model.ModePatch:
		fmt.Fprintf(&b, "Follow the operational manual strictly. Analyze user directives and respond with the edits to apply to %s.\n", name)
		b.WriteString("Respond only with a JSON object matching this schema:\n\n")
		b.WriteString("```json\n" + editListSchema() + "\n```\n\n")
		b.WriteString("Each \"old\" value must be copied exactly from the current content, including whitespace. ")
		b.WriteString("Every occurrence of \"old\" is replaced by \"new\". Edits are applied in the order listed.\n")
	default:
		fmt.Fprintf(&b, "Follow the operational manual strictly. Analyze user directives and output the updated %s file accordingly.\n", name)
	}
	return b.String()
}

// Processor obtains proposals from a Generator.
type Processor struct {
	gen Generator
}

// New creates a Processor using gen.
func New(gen Generator) *Processor {
	return &Processor{gen: gen}
}

// Process sends the request to the generator once and shapes the response.
// Generation and parse failures are returned as-is; nothing is retried.
func (p *Processor) Process(ctx context.Context, req Request) (Proposal, error) {
	log := clog.FromContext(ctx)

	instructions := Instructions(req.Mode, req.Policy, req.Path, req.Content)
	log.With("instructions_bytes", len(instructions)).Debug("sending directive to generator")

	response, err := p.gen.Generate(ctx, instructions, req.Directive)
	if err != nil {
		return Proposal{}, fmt.Errorf("generating response: %w", err)
	}
	if strings.TrimSpace(response) == "" {
		return Proposal{}, ErrEmptyResponse
	}

	proposal := Proposal{Mode: req.Mode, Raw: response}
	switch req.Mode {
	case model.ModePatch:
		list, err := ParseEdits(response)
		if err != nil {
			return Proposal{}, err
		}
		log.With("edits", len(list.Edits)).Info("received edit list")
		proposal.Edits = list.Edits
	case model.ModeReplace:
		proposal.Content = UnwrapDocument(response)
	default:
		return Proposal{}, fmt.Errorf("unknown mode %q", req.Mode)
	}
	return proposal, nil
}
