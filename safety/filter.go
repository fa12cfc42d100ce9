// Package safety pre-screens user text before it reaches the model: a
// deterministic normalizer and an ordered keyword filter. It is cheap
// best-effort screening, not moderation.
package safety

import (
	"strings"

	"github.com/egor/vicai/config"
)

// Reason is the single category attached to a verdict.
type Reason string

const (
	ReasonSafe            Reason = "safe"
	ReasonIllegalContent  Reason = "illegal_content"
	ReasonPromptInjection Reason = "prompt_injection"
	ReasonSpam            Reason = "spam"
)

// Message is the client-facing text for a reason. It never contains the
// matched phrase.
func (r Reason) Message() string {
	switch r {
	case ReasonIllegalContent:
		return "Illegal or dangerous activity detected."
	case ReasonPromptInjection:
		return "Prompt injection attempt blocked."
	case ReasonSpam:
		return "Spam or malicious overload prevented."
	}
	return "Safe"
}

// order is the fixed check order; a Matcher category index maps into it.
var order = []Reason{ReasonIllegalContent, ReasonPromptInjection, ReasonSpam}

// Verdict is the filter decision. SanitizedText is set only when Allowed.
type Verdict struct {
	Allowed       bool
	Reason        Reason
	SanitizedText string
	// Matched is the phrase that caused a rejection, for logs only.
	Matched string
}

// Filter checks text against the illegal, injection and spam lists. It is
// immutable and safe for concurrent use.
type Filter struct {
	lists   config.SafetyLists
	matcher *Matcher
}

// NewFilter compiles the three lists.
func NewFilter(lists config.SafetyLists) *Filter {
	return &Filter{
		lists:   lists,
		matcher: NewMatcher(lower(lists.Illegal), lower(lists.Injection), lower(lists.Spam)),
	}
}

// Lists returns the lists the filter was built from.
func (f *Filter) Lists() config.SafetyLists { return f.lists }

// Check returns the verdict for raw. The first category in order
// illegal, injection, spam that has any phrase inside the lowercased input
// wins. Matching is substring based: "override" also matches "overrides".
func (f *Filter) Check(raw string) Verdict {
	if m, ok := f.matcher.Find(strings.ToLower(raw)); ok {
		return Verdict{Reason: order[m.Category], Matched: m.Phrase}
	}
	return Verdict{
		Allowed:       true,
		Reason:        ReasonSafe,
		SanitizedText: Normalize(raw),
	}
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
