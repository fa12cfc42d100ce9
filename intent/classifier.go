// Package intent assigns a routing label to cleaned user text using ordered
// keyword and pattern rules.
package intent

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/safety"
)

// Label is the routing category of a message.
type Label string

const (
	Chat    Label = "chat"
	Code    Label = "code"
	Teach   Label = "teach"
	Unsafe  Label = "unsafe"
	Unknown Label = "unknown"
)

var (
	codeFence      = regexp.MustCompile("```")
	varDeclaration = regexp.MustCompile(`(const|let|var)\s+[a-zA-Z]`)
	funcDefinition = regexp.MustCompile(`def\s+[a-zA-Z]`)
	conversational = regexp.MustCompile(`^[a-zA-Z0-9 ?!.,'"]{4,}$`)
)

// Classifier is immutable and safe for concurrent use.
type Classifier struct {
	lists  config.ClassifierLists
	unsafe *safety.Matcher
	code   *safety.Matcher
	teach  *safety.Matcher
}

// NewClassifier compiles the keyword lists.
func NewClassifier(lists config.ClassifierLists) *Classifier {
	return &Classifier{
		lists:  lists,
		unsafe: safety.NewMatcher(lower(lists.Unsafe)),
		code:   safety.NewMatcher(lower(lists.Code)),
		teach:  safety.NewMatcher(lower(lists.Teach)),
	}
}

// Lists returns the lists the classifier was built from.
func (c *Classifier) Lists() config.ClassifierLists { return c.lists }

// Classify labels normalized text. Rules run in order and the first hit wins:
// too short, unsafe, code, teach, conversational, unknown.
func (c *Classifier) Classify(normalized string) Label {
	if utf8.RuneCountInString(normalized) < 2 {
		return Chat
	}

	text := safety.StripEmoji(normalized)
	switch {
	case c.IsUnsafe(text):
		return Unsafe
	case c.LooksLikeCode(text):
		return Code
	case c.LooksLikeTeaching(text):
		return Teach
	case LooksConversational(text):
		return Chat
	}
	return Unknown
}

// IsUnsafe reports an unsafe keyword anywhere in text.
func (c *Classifier) IsUnsafe(text string) bool {
	return c.unsafe.Contains(strings.ToLower(text))
}

// LooksLikeCode reports a code keyword, a code fence, a variable
// declaration or a Python style function definition. The patterns are case
// sensitive, the keywords are not.
func (c *Classifier) LooksLikeCode(text string) bool {
	return c.code.Contains(strings.ToLower(text)) ||
		codeFence.MatchString(text) ||
		varDeclaration.MatchString(text) ||
		funcDefinition.MatchString(text)
}

// LooksLikeTeaching reports an explanation request.
func (c *Classifier) LooksLikeTeaching(text string) bool {
	return c.teach.Contains(strings.ToLower(text))
}

// LooksConversational reports plain ASCII letters, digits, spaces and basic
// punctuation, at least four characters long.
func LooksConversational(text string) bool {
	return conversational.MatchString(text)
}

// Analysis keeps the raw input next to its cleaned form.
type Analysis struct {
	Raw   string `json:"raw"`
	Clean string `json:"clean"`
	Label Label  `json:"type"`
}

// Analyze normalizes raw and classifies it.
func (c *Classifier) Analyze(raw string) Analysis {
	clean := safety.Normalize(raw)
	return Analysis{Raw: raw, Clean: clean, Label: c.Classify(clean)}
}

func lower(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
