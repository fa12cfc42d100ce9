package safety

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script.*?>.*?</script>`)
	scriptTag   = regexp.MustCompile(`(?i)</?script>`)
)

// isInvisible reports zero-width, bidi-control and BOM code points.
func isInvisible(r rune) bool {
	switch {
	case r >= 0x200B && r <= 0x200F,
		r >= 0x202A && r <= 0x202E,
		r >= 0x2060 && r <= 0x2064,
		r == 0xFEFF:
		return true
	}
	return unicode.IsControl(r) && !unicode.IsSpace(r)
}

// isStripped reports the characters removed before text reaches the model.
func isStripped(r rune) bool {
	switch r {
	case '{', '}', '$', '`':
		return true
	}
	return false
}

// isEmoji covers dingbats, the private use area, the emoji variation
// selector and everything from U+1F000 up.
func isEmoji(r rune) bool {
	return (r >= 0x2700 && r <= 0x27BF) ||
		(r >= 0xE000 && r <= 0xF8FF) ||
		r == 0xFE0F ||
		r >= 0x1F000
}

// Normalize cleans raw user text: invisible characters, script blocks and
// the characters { } $ ` are removed, whitespace runs become one space, and
// the result is trimmed. It is applied until nothing changes, so
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(raw string) string {
	s := raw
	for {
		next := normalizeOnce(s)
		if next == s {
			return next
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.Map(func(r rune) rune {
		if isInvisible(r) {
			return -1
		}
		return r
	}, s)
	s = scriptBlock.ReplaceAllString(s, "")
	s = scriptTag.ReplaceAllString(s, "")
	s = strings.Map(func(r rune) rune {
		if isStripped(r) {
			return -1
		}
		return r
	}, s)
	return collapseSpace(s)
}

// NormalizeForClassification is Normalize followed by emoji removal. Emoji
// carry tone for chat but are noise for intent rules.
func NormalizeForClassification(s string) string {
	return StripEmoji(Normalize(s))
}

// StripEmoji removes emoji code points and trims the result.
func StripEmoji(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if isEmoji(r) {
			return -1
		}
		return r
	}, s))
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
