package editor

import "strings"

// normalizeLine trims a line and collapses internal whitespace runs to one space.
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// targetBlock returns the normalized, non-empty lines of text.
func targetBlock(text string) []string {
	var block []string
	for _, line := range strings.Split(text, "\n") {
		if n := normalizeLine(line); n != "" {
			block = append(block, n)
		}
	}
	return block
}

// nearMatch looks for text in content ignoring whitespace and blank lines and
// returns the 1-based line where the match starts, or 0. The first and last
// lines of text may match a suffix and prefix of a source line respectively.
func nearMatch(content, text string) int {
	block := targetBlock(text)
	if len(block) == 0 {
		return 0
	}

	var filtered []string
	var lineNumbers []int
	for i, line := range strings.Split(content, "\n") {
		if n := normalizeLine(line); n != "" {
			filtered = append(filtered, n)
			lineNumbers = append(lineNumbers, i+1)
		}
	}

	for i := 0; i <= len(filtered)-len(block); i++ {
		if blockMatchesAt(filtered, block, i) {
			return lineNumbers[i]
		}
	}
	return 0
}

func blockMatchesAt(source, block []string, at int) bool {
	if len(block) == 1 {
		return strings.Contains(source[at], block[0])
	}
	last := len(block) - 1
	for j, want := range block {
		got := source[at+j]
		switch j {
		case 0:
			if !strings.HasSuffix(got, want) {
				return false
			}
		case last:
			if !strings.HasPrefix(got, want) {
				return false
			}
		default:
			if got != want {
				return false
			}
		}
	}
	return true
}
