package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf)

	l.Info("started", map[string]any{"port": "8080"})
	l.Warn("slow", nil)
	l.Error("upstream failed", map[string]string{"detail": "boom"})
	l.Fatal("cannot continue", nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)

	levels := []string{"INFO", "WARN", "ERROR", "FATAL"}
	for i, want := range levels {
		assert.Equal(t, want, lines[i]["level"])
		assert.NotEmpty(t, lines[i]["timestamp"])
	}
	assert.Equal(t, "started", lines[0]["message"])
	assert.Equal(t, map[string]any{"port": "8080"}, lines[0]["data"])
	assert.Nil(t, lines[1]["data"])
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() { l.Info("x", nil) })
	assert.NotPanics(t, func() { Nop().Error("x", struct{ C chan int }{}) })
}
