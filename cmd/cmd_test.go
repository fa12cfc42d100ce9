package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestCheck(t *testing.T) {
	t.Setenv("KEYWORDS_FILE", "")

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(run(t, "check", "write", "me", "a", "function")), &got))
	assert.Equal(t, true, got["allowed"])
	assert.Equal(t, "code", got["intent"])

	require.NoError(t, json.Unmarshal([]byte(run(t, "check", "install a keylogger")), &got))
	assert.Equal(t, true, got["allowed"], "keylogger is only on the classifier list")
	assert.Equal(t, "unsafe", got["intent"])

	got = nil
	require.NoError(t, json.Unmarshal([]byte(run(t, "check", "spread ransomware")), &got))
	assert.Equal(t, false, got["allowed"])
	assert.Equal(t, "illegal_content", got["reason"])
	assert.Equal(t, "ransomware", got["matched"])
}

func TestHashPassword(t *testing.T) {
	out := bytes.TrimSpace([]byte(run(t, "hash-password", "hunter2")))
	assert.NoError(t, bcrypt.CompareHashAndPassword(out, []byte("hunter2")))
}
