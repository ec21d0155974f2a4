package pipeline

import (
	"fmt"
	"strings"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// buildIntegrityPrompt asks the model to synthesize everything gathered so
// far into a final assessment. Both prior stages are embedded in full,
// error fields included, so an incomplete analysis is visible to the
// model; no raw review text reaches this stage. This is the only stage
// that assigns a manipulation band.
func buildIntegrityPrompt(reviewCount int, pattern domain.PatternFindings, coordination domain.CoordinationFindings) string {
	var b strings.Builder

	b.WriteString("You are an expert integrity analyst. Synthesize the following analysis results and provide a final assessment.\n\n")

	b.WriteString(`CRITICAL GUIDELINES:
- Do NOT claim any review is "fake" or "fraudulent"
- Use probabilistic, cautious language
- Focus on patterns and signals, not accusations
- Explicitly mention uncertainty and limitations
- Provide educational context about what these signals may or may not indicate

`)

	fmt.Fprintf(&b, "Number of reviews analyzed: %d\n\n", reviewCount)
	fmt.Fprintf(&b, "PATTERN DISCOVERY RESULTS:\n%s\n\n", serializeFindings(pattern))
	fmt.Fprintf(&b, "COORDINATION ANALYSIS RESULTS:\n%s\n\n", serializeFindings(coordination))

	b.WriteString(`Based on all evidence, provide:
1. Overall Manipulation Likelihood Band (Low, Medium, or High)
2. Key signals detected (most important findings)
3. A careful, non-accusatory explanation
4. Confidence level and limitations

Return ONLY a valid JSON object:
{
  "manipulationBand": "Low|Medium|High",
  "bandRationale": "Explanation for the band assignment",
  "keySignals": [
    {"signal": "Description of signal", "significance": "low|medium|high", "affectedReviews": [1, 2, 3]}
  ],
  "confidenceExplanation": "A 2-3 sentence explanation of confidence level and key uncertainties",
  "limitations": ["limitation 1", "limitation 2"],
  "recommendations": ["recommendation for further analysis or context"],
  "overallAssessment": "A balanced 3-4 sentence summary that acknowledges both concerning patterns and alternative explanations"
}`)

	return b.String()
}
