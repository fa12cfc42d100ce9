package llm

import "github.com/egor/vicai/intent"

var addenda = map[intent.Label]string{
	intent.Code:   "The user is asking for code. Give a short explanation and one fenced code block.",
	intent.Teach:  "The user wants to learn. Explain step by step in plain language, with an example.",
	intent.Unsafe: "This request may be unsafe. Decline anything harmful or illegal and offer a safe alternative.",
}

// promptAddendum is appended to the system prompt for the given intent.
func promptAddendum(l intent.Label) string {
	return addenda[l]
}
