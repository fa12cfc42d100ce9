package llm

import (
	"context"
	"strings"

	"github.com/egor/vicai/intent"
	"github.com/egor/vicai/memory"
)

const (
	memoryContextChars = 200
	slowSafeChars      = 300
)

// Refusal is the rule engine's answer to an unsafe request.
const Refusal = "I can't help with that. I'm happy to help with something safe instead."

// RuleEngine answers without any model: mood-based tone, canned code
// templates and the client's recent history.
type RuleEngine struct {
	mem *memory.Store
}

func NewRuleEngine(mem *memory.Store) *RuleEngine {
	if mem == nil {
		mem = memory.New(memory.DefaultLimit)
	}
	return &RuleEngine{mem: mem}
}

func (e *RuleEngine) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	mood := DetectMood(req.Text)
	settings := AdjustSettings(mood)

	if req.Intent == intent.Unsafe {
		return Refusal, nil
	}

	history := e.mem.Load(req.ClientID, 0)

	var result string
	if req.Intent == intent.Code {
		result = codeReply(req.Text, settings)
	} else {
		result = chatReply(req.Text, settings, history)
	}

	e.mem.Save(req.ClientID, req.Text, result)
	return Prefix(mood) + result, nil
}

func chatReply(prompt string, s Settings, history []memory.Exchange) string {
	var b strings.Builder

	if len(history) > 0 {
		lines := make([]string, 0, len(history))
		for _, ex := range history {
			lines = append(lines, "User: "+ex.User+"\nAI: "+ex.AI)
		}
		b.WriteString("Based on earlier: ")
		b.WriteString(truncateRunes(strings.Join(lines, "\n"), memoryContextChars))
		b.WriteString("\n\n")
	}

	b.WriteString("Okay here's what I think: ")
	switch s.Verbosity {
	case VerbosityHigh:
		b.WriteString("Let's break it down in a clear and detailed way. ")
	case VerbosityLow:
		b.WriteString("Quick answer: ")
	}
	b.WriteString(smartRespond(prompt))
	if s.Humor {
		b.WriteString(" 😂")
	}

	out := b.String()
	if s.SpeedMode == SpeedSlowSafe {
		out = truncateRunes(out, slowSafeChars)
	}
	return smoothText(out)
}

func smartRespond(prompt string) string {
	p := strings.ToLower(prompt)
	switch {
	case len([]rune(p)) < 5:
		return "Say more so I can help better!"
	case strings.Contains(p, "upgrade"):
		return "Alright, upgrading this one 🔥"
	case strings.Contains(p, "sad"):
		return "I'm here, talk to me."
	default:
		return "Got you, here's what you need."
	}
}

func codeReply(prompt string, s Settings) string {
	p := strings.ToLower(prompt)

	var b strings.Builder
	switch {
	case strings.Contains(p, "html"):
		b.WriteString(htmlTemplate)
	case strings.Contains(p, "api"):
		b.WriteString(apiTemplate)
	case strings.Contains(p, "cloudflare"):
		b.WriteString(workerTemplate)
	default:
		b.WriteString("// Code requested, but domain unknown. Here's a generic template.\n")
		b.WriteString(genericTemplate)
	}

	if s.Verbosity == VerbosityHigh {
		b.WriteString("\n\n// Detailed explanation:\n")
		b.WriteString("This code provides a basic structure you can expand for your needs.")
	}
	return smoothText(b.String())
}

const htmlTemplate = `
<!DOCTYPE html>
<html>
<head>
<title>Example</title>
</head>
<body>
<h1>Your HTML Project</h1>
</body>
</html>`

const apiTemplate = `
export default {
  async fetch(request) {
    return new Response("API working!");
  }
};`

const workerTemplate = `
export default {
  async fetch(request) {
    return new Response("Cloudflare Worker active!");
  }
};`

const genericTemplate = `
function main() {
  console.log("Hello from your code!");
}`
