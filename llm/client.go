package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/egor/vicai/memory"
)

// ErrNoChoices is returned when the endpoint answers 200 without a choice.
var ErrNoChoices = errors.New("LLM API returned no choices")

// Message is one chat turn in the OpenAI wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompletionRequest is the POST body of /chat/completions.
type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

type ChatCompletionChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type ChatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Created int64                  `json:"created"`
	Model   string                 `json:"model"`
	Choices []ChatCompletionChoice `json:"choices"`
	Usage   map[string]int         `json:"usage"`
}

type ClientConfig struct {
	URL          string // base, without /chat/completions
	Key          string // sent as a bearer token when set
	Model        string
	Timeout      time.Duration
	SystemPrompt string
	HistoryTurns int // exchanges from memory to replay, 0 disables
}

// Client talks to any OpenAI-compatible inference endpoint.
type Client struct {
	cfg    ClientConfig
	client *http.Client
	mem    *memory.Store
}

// NewClient creates a client. mem may be nil when history is disabled.
func NewClient(cfg ClientConfig, mem *memory.Store) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		mem:    mem,
	}
}

// Generate builds the prompt for req and records the exchange on success.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	system := c.cfg.SystemPrompt
	if add := promptAddendum(req.Intent); add != "" {
		system += "\n\n" + add
	}

	var history []Message
	if c.mem != nil && c.cfg.HistoryTurns > 0 {
		for _, ex := range c.mem.Load(req.ClientID, c.cfg.HistoryTurns) {
			history = append(history,
				Message{Role: "user", Content: ex.User},
				Message{Role: "assistant", Content: ex.AI},
			)
		}
	}

	out, err := c.GenerateResponse(ctx, system, history, req.Text)
	if err != nil {
		return "", err
	}
	if c.mem != nil && c.cfg.HistoryTurns > 0 {
		c.mem.Save(req.ClientID, req.Text, out)
	}
	return out, nil
}

// GenerateResponse sends system + history + the user message and returns
// the text of the first choice.
func (c *Client) GenerateResponse(
	ctx context.Context,
	system string,
	history []Message,
	userMessage string,
) (string, error) {
	messages := make([]Message, 0, len(history)+2)
	if system != "" {
		messages = append(messages, Message{Role: "system", Content: system})
	}
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: userMessage})

	payload, err := json.Marshal(ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request body: %w", err)
	}

	endpoint := c.cfg.URL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Key != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Key)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("LLM API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("LLM API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var completion ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", ErrNoChoices
	}
	return completion.Choices[0].Message.Content, nil
}
