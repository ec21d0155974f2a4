package pipeline

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// Per-item content caps keep prompt payloads bounded.
const (
	patternContentLimit      = 500
	coordinationContentLimit = 300
)

// buildPatternPrompt asks the model for linguistic similarity, emotional
// exaggeration, template phrasing and cross-language reuse across the
// batch. All scores come from the model; nothing is computed locally.
func buildPatternPrompt(reviews []domain.PreprocessedReview) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert linguistic analyst. Analyze the following %d reviews for patterns that may indicate coordinated reviewing behavior.\n\n", len(reviews))
	b.WriteString("IMPORTANT: Do NOT label any review as \"fake\" or \"fraudulent\". Focus only on detecting patterns.\n\n")

	b.WriteString("Reviews to analyze:\n")
	for i, r := range reviews {
		fmt.Fprintf(&b, "[%d] Rating: %s | Language: %s | Words: %d\n%q\n\n",
			i+1, ratingLabel(r.Rating), r.DetectedLanguage, r.WordCount,
			truncate(r.Content, patternContentLimit))
	}

	b.WriteString(`Analyze for:
1. Linguistic similarity between reviews (similar sentence structures, word choices)
2. Emotional exaggeration patterns (hyperbolic language, unusual enthusiasm/negativity)
3. Template-like phrasing (cookie-cutter language, repetitive structures)
4. Cross-language content reuse (same message translated)

Return ONLY a valid JSON object with this structure:
{
  "linguisticSimilarityScore": <0-100>,
  "similarPhrases": [{"phrase": "...", "reviewIndices": [1,2,3], "frequency": 3}],
  "emotionalPatterns": [{"pattern": "...", "reviewIndices": [1,2], "intensity": "low|medium|high"}],
  "templateIndicators": [{"indicator": "...", "reviewIndices": [1,2]}],
  "crossLanguageMatches": [{"concept": "...", "languages": ["en", "de"], "reviewIndices": [1,5]}],
  "observations": ["observation 1", "observation 2"]
}`)

	return b.String()
}

func ratingLabel(rating int) string {
	if rating == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", rating)
}

// truncate caps s at limit bytes, cutting on a rune boundary and marking
// the cut with an ellipsis.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
