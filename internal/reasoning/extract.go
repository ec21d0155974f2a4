package reasoning

import (
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ParseFailureMessage is the error text carried by a degraded stage whose
// response could not be coerced into JSON.
const ParseFailureMessage = "Failed to parse AI response"

// rawExcerptLen bounds the excerpt kept from an unparseable response.
const rawExcerptLen = 500

// ExtractObject locates the widest brace-delimited substring of response
// (first '{' through last '}') and strict-parses it as a JSON object.
// Idempotent: extracting from an already-extracted object yields an equal
// object.
func ExtractObject(response string) (json.RawMessage, bool) {
	start := strings.IndexByte(response, '{')
	end := strings.LastIndexByte(response, '}')
	if start < 0 || end <= start {
		return nil, false
	}

	candidate := response[start : end+1]
	var obj map[string]any
	if err := json.Unmarshal([]byte(candidate), &obj); err != nil {
		return nil, false
	}
	return json.RawMessage(candidate), true
}

// Excerpt returns at most the first 500 bytes of an unparseable response,
// cut on a rune boundary, for the degraded {error, raw} placeholder.
func Excerpt(response string) string {
	if len(response) <= rawExcerptLen {
		return response
	}
	cut := rawExcerptLen
	for cut > 0 && !utf8.RuneStart(response[cut]) {
		cut--
	}
	return response[:cut]
}
