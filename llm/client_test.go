package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/egor/vicai/intent"
	"github.com/egor/vicai/memory"
)

type captured struct {
	req  ChatCompletionRequest
	auth string
}

func completionServer(t *testing.T, seen *captured, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&seen.req))
			seen.auth = r.Header.Get("Authorization")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

const okBody = `{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"hello there"}}]}`

func TestClient_Generate(t *testing.T) {
	var seen captured
	srv := completionServer(t, &seen, http.StatusOK, okBody)

	c := NewClient(ClientConfig{URL: srv.URL, Key: "secret", Model: "m1", SystemPrompt: "be nice"}, nil)
	out, err := c.Generate(context.Background(), Request{ClientID: "a", Text: "hi", Intent: intent.Chat})
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	assert.Equal(t, "m1", seen.req.Model)
	assert.Equal(t, "Bearer secret", seen.auth)
	require.Len(t, seen.req.Messages, 2)
	assert.Equal(t, Message{Role: "system", Content: "be nice"}, seen.req.Messages[0])
	assert.Equal(t, Message{Role: "user", Content: "hi"}, seen.req.Messages[1])
}

func TestClient_IntentAddendum(t *testing.T) {
	var seen captured
	srv := completionServer(t, &seen, http.StatusOK, okBody)

	c := NewClient(ClientConfig{URL: srv.URL, SystemPrompt: "base"}, nil)
	_, err := c.Generate(context.Background(), Request{Text: "write me code", Intent: intent.Code})
	require.NoError(t, err)
	assert.Contains(t, seen.req.Messages[0].Content, "base")
	assert.Contains(t, seen.req.Messages[0].Content, "fenced code block")
	assert.Empty(t, promptAddendum(intent.Chat))
}

func TestClient_History(t *testing.T) {
	var seen captured
	srv := completionServer(t, &seen, http.StatusOK, okBody)

	mem := memory.New(memory.DefaultLimit)
	mem.Save("a", "q1", "r1")
	mem.Save("a", "q2", "r2")
	mem.Save("a", "q3", "r3")

	c := NewClient(ClientConfig{URL: srv.URL, SystemPrompt: "s", HistoryTurns: 2}, mem)
	_, err := c.Generate(context.Background(), Request{ClientID: "a", Text: "q4"})
	require.NoError(t, err)

	// system + 2 exchanges + user
	require.Len(t, seen.req.Messages, 6)
	assert.Equal(t, "q2", seen.req.Messages[1].Content)
	assert.Equal(t, "assistant", seen.req.Messages[2].Role)
	assert.Equal(t, "q4", seen.req.Messages[5].Content)

	last := mem.Load("a", 1)
	require.Len(t, last, 1)
	assert.Equal(t, "hello there", last[0].AI)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"non 200", http.StatusBadGateway, `upstream down`},
		{"bad json", http.StatusOK, `{not json`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := completionServer(t, nil, tt.status, tt.body)
			c := NewClient(ClientConfig{URL: srv.URL}, nil)
			_, err := c.Generate(context.Background(), Request{Text: "hi"})
			assert.Error(t, err)
		})
	}

	srv := completionServer(t, nil, http.StatusOK, `{"choices":[]}`)
	_, err := NewClient(ClientConfig{URL: srv.URL}, nil).Generate(context.Background(), Request{Text: "hi"})
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestClient_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewClient(ClientConfig{URL: srv.URL}, nil).Generate(ctx, Request{Text: "hi"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
