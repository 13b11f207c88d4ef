package directive

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// CodeBlock represents a fenced code block found in a model response.
type CodeBlock struct {
	// Lang is the info string of the fence (e.g., "json", "markdown").
	Lang string
	// Content is the raw text inside the fence.
	Content string
}

// ExtractCodeBlocks walks the markdown AST of source and returns every fenced
// code block in document order.
func ExtractCodeBlocks(source []byte) ([]CodeBlock, error) {
	var blocks []CodeBlock
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, toCodeBlock(fenced, source))
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return blocks, nil
}

// soleCodeBlock returns the fenced block when it is the only thing in source.
func soleCodeBlock(source []byte) (CodeBlock, bool) {
	trimmed := bytes.TrimSpace(source)
	if !bytes.HasPrefix(trimmed, []byte("```")) || !bytes.HasSuffix(trimmed, []byte("```")) {
		return CodeBlock{}, false
	}
	root := goldmark.DefaultParser().Parse(text.NewReader(trimmed))
	if root.ChildCount() != 1 {
		return CodeBlock{}, false
	}
	fenced, ok := root.FirstChild().(*ast.FencedCodeBlock)
	if !ok {
		return CodeBlock{}, false
	}
	return toCodeBlock(fenced, trimmed), true
}

func toCodeBlock(fenced *ast.FencedCodeBlock, source []byte) CodeBlock {
	var block CodeBlock
	if fenced.Info != nil {
		block.Lang = strings.TrimSpace(string(fenced.Info.Text(source)))
	}
	var content bytes.Buffer
	lines := fenced.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		content.Write(line.Value(source))
	}
	block.Content = content.String()
	return block
}

// fence returns a backtick fence longer than any backtick run in content, so the
// content can be embedded verbatim.
func fence(content string) string {
	longest, run := 0, 0
	for _, r := range content {
		if r == '`' {
			run++
			if run > longest {
				longest = run
			}
			continue
		}
		run = 0
	}
	if longest < 3 {
		return "```"
	}
	return strings.Repeat("`", longest+1)
}
