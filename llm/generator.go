// Package llm produces replies: either from an OpenAI-compatible inference
// endpoint or from a small rule-based engine.
package llm

import (
	"context"
	"fmt"

	"github.com/egor/vicai/config"
	"github.com/egor/vicai/intent"
	"github.com/egor/vicai/memory"
)

// Request is an already filtered and classified message.
type Request struct {
	ClientID string
	Text     string
	Intent   intent.Label
}

// Generator turns a request into reply text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a plain function.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// New picks the generator named by cfg.Provider.
func New(cfg *config.Config, mem *memory.Store) (Generator, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewClient(ClientConfig{
			URL:          cfg.LLMURL,
			Key:          cfg.LLMKey,
			Model:        cfg.LLMModel,
			Timeout:      cfg.LLMTimeout,
			SystemPrompt: cfg.SystemPrompt,
			HistoryTurns: cfg.HistoryTurns,
		}, mem), nil
	case "rulebased":
		return NewRuleEngine(mem), nil
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.Provider)
	}
}
