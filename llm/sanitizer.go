package llm

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	spaceBeforeDot   = regexp.MustCompile(`\s+\.`)
	spaceBeforeComma = regexp.MustCompile(`\s+,`)
	blankLines       = regexp.MustCompile(`\n{3,}`)
)

// smoothText tidies generated text: no space before '.' or ',', at most one
// blank line in a row, trimmed.
func smoothText(s string) string {
	s = spaceBeforeDot.ReplaceAllString(s, ".")
	s = spaceBeforeComma.ReplaceAllString(s, ",")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
