package genai

import (
	"strings"
	"unicode"
)

var projectBulletPrefixes = []string{"•", "-", "–", "*"}

// IsProjectTitleLine reports whether a line delimits a project block in the
// candidate pool: non-empty, not bullet-prefixed, and either mostly
// uppercase or title-cased.
func IsProjectTitleLine(line string) (title bool) {
	t := strings.TrimSpace(line)
	if t == "" {
		return title
	}
	for _, prefix := range projectBulletPrefixes {
		if strings.HasPrefix(t, prefix) {
			return title
		}
	}

	letters := 0
	upper := 0
	for _, r := range t {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return title
	}

	title = float64(upper)/float64(letters) > 0.65 || isTitleCased(t)
	return title
}

// isTitleCased reports whether every cased run of characters starts with an
// uppercase letter and continues in lowercase.
func isTitleCased(s string) (titled bool) {
	cased := false
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				return titled
			}
			cased = true
			prevCased = true
		case unicode.IsLower(r):
			if !prevCased {
				return titled
			}
			cased = true
			prevCased = true
		default:
			prevCased = false
		}
	}
	titled = cased
	return titled
}

// SplitProjectBlocks splits a projects text into title-delimited blocks,
// each a title line followed by its bullet lines verbatim. Bullets arriving
// before any title still form a block.
func SplitProjectBlocks(text string) (blocks [][]string) {
	var current []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			// Keep at most one blank inside a block.
			if len(current) > 0 && strings.TrimSpace(current[len(current)-1]) != "" {
				current = append(current, "")
			}
			continue
		}

		if IsProjectTitleLine(line) && len(current) > 0 {
			blocks = append(blocks, trimTrailingBlanks(current))
			current = []string{line}
			continue
		}

		current = append(current, line)
	}

	if len(current) > 0 {
		blocks = append(blocks, trimTrailingBlanks(current))
	}

	return blocks
}

// KeepTopProjects truncates a projects text to its first n title-delimited
// blocks, in original order.
func KeepTopProjects(text string, n int) (truncated string) {
	blocks := SplitProjectBlocks(text)
	if len(blocks) > n {
		blocks = blocks[:n]
	}

	parts := make([]string, len(blocks))
	for i, block := range blocks {
		parts[i] = strings.Join(block, "\n")
	}

	truncated = strings.Join(parts, "\n\n")
	return truncated
}

func trimTrailingBlanks(lines []string) (trimmed []string) {
	trimmed = lines
	for len(trimmed) > 0 && strings.TrimSpace(trimmed[len(trimmed)-1]) == "" {
		trimmed = trimmed[:len(trimmed)-1]
	}
	return trimmed
}
