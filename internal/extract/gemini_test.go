package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no language", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"leading prose", "Here is the JSON:\n{\"a\": 1}", `{"a": 1}`},
		{"trailing prose", "{\"a\": 1}\nHope this helps!", `{"a": 1}`},
		{"whitespace", "  \n{\"a\": 1}\n  ", `{"a": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanModelJSON(tt.in))
		})
	}
}

func TestBuildStatementPromptEmbedsText(t *testing.T) {
	prompt := buildStatementPrompt("Account Holder: John Doe")

	assert.Contains(t, prompt, "Account Holder: John Doe")
	assert.Contains(t, prompt, `"transactions"`)
	assert.Contains(t, prompt, "YYYY-MM-DD")
	assert.True(t, strings.Contains(prompt, "ONLY"), "prompt must demand JSON-only output")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abcde", truncate(strings.Repeat("abcde", 3), 5))
	assert.Equal(t, "short", truncate("short", 100))
}

func TestGeminiExtractorName(t *testing.T) {
	assert.Equal(t, "gemini", NewGeminiExtractor("gemini-2.5-flash", 100).Name())
}
