//nolint:testpackage // Testing internal extraction requires same package access
package reasoning

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractObject(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		ok       bool
	}{
		{
			name:     "bare object",
			response: `{"a":1}`,
			want:     `{"a":1}`,
			ok:       true,
		},
		{
			name:     "object wrapped in prose",
			response: "Here is the analysis:\n```json\n{\"score\": 42}\n```\nHope that helps!",
			want:     `{"score": 42}`,
			ok:       true,
		},
		{
			name:     "nested braces take the widest span",
			response: `prefix {"outer": {"inner": [1,2]}} suffix`,
			want:     `{"outer": {"inner": [1,2]}}`,
			ok:       true,
		},
		{
			name:     "no braces",
			response: "I cannot answer that.",
			ok:       false,
		},
		{
			name:     "braces but invalid json",
			response: `{"unterminated: true`,
			ok:       false,
		},
		{
			name:     "empty response",
			response: "",
			ok:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := ExtractObject(tt.response)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, string(raw))
			}
		})
	}
}

func TestExtractObject_Idempotent(t *testing.T) {
	first, ok := ExtractObject("noise {\"a\": [1, 2], \"b\": {\"c\": true}} noise")
	require.True(t, ok)

	second, ok := ExtractObject(string(first))
	require.True(t, ok)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.Equal(t, a, b)
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("x", 800)
	assert.Len(t, Excerpt(long), 500)
	assert.Equal(t, "short", Excerpt("short"))
}

func TestExcerpt_CutsOnRuneBoundary(t *testing.T) {
	// 200 three-byte runes; byte 500 falls inside a rune, so the cut
	// backs up to byte 498.
	long := strings.Repeat("日", 200)

	got := Excerpt(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("日", 166), got)
}
