package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// timingEntry is one dated review in the prompt's timing-data array.
type timingEntry struct {
	Index  int    `json:"index"` // 1-based batch position
	Date   string `json:"date"`
	Rating int    `json:"rating,omitempty"`
}

// buildCoordinationPrompt asks the model for timing bursts, rating-text
// mismatches and coordination clusters, with the pattern stage's findings
// summarized as context. A degraded pattern stage shows up as "N/A" and
// zero counts, which tells the model the prior analysis was incomplete.
func buildCoordinationPrompt(reviews []domain.PreprocessedReview, pattern domain.PatternFindings) string {
	var b strings.Builder

	b.WriteString("You are an expert in detecting coordinated online behavior. Analyze these reviews for coordination signals.\n\n")

	fmt.Fprintf(&b, "Reviews (%d total):\n", len(reviews))
	for i, r := range reviews {
		fmt.Fprintf(&b, "[%d] Rating: %s | Date: %s | Words: %d\n%q\n\n",
			i+1, ratingLabel(r.Rating), dateLabel(r.ReviewDate), r.WordCount,
			truncate(r.Content, coordinationContentLimit))
	}

	b.WriteString("Previous pattern analysis found:\n")
	fmt.Fprintf(&b, "- Linguistic similarity score: %s\n", scoreLabel(pattern.LinguisticSimilarityScore))
	fmt.Fprintf(&b, "- Similar phrases found: %d\n", len(pattern.SimilarPhrases))
	fmt.Fprintf(&b, "- Template indicators: %d\n\n", len(pattern.TemplateIndicators))

	fmt.Fprintf(&b, "Timing data available: %s\n\n", timingData(reviews))

	b.WriteString(`Analyze for:
1. Timing patterns (bursts of reviews in short periods)
2. Rating-text mismatches (positive text with low rating or vice versa)
3. Suspicious review bursts (many similar reviews in quick succession)
4. Group reviews into possible coordination clusters

IMPORTANT: Use probabilistic language. Do not make accusations.

Return ONLY a valid JSON object:
{
  "timingAnalysis": {
    "burstsPeriods": [{"startDate": "...", "endDate": "...", "count": 5}],
    "distributionScore": <0-100 where 100 is perfectly even distribution>,
    "suspiciousTiming": true|false
  },
  "ratingMismatches": [{"reviewIndex": 1, "rating": 5, "sentimentDetected": "negative", "mismatchSeverity": "low|medium|high"}],
  "clusters": [
    {
      "clusterId": 1,
      "reviewIndices": [1, 3, 7],
      "commonCharacteristics": ["similar phrasing", "posted same day"],
      "coordinationLikelihood": "low|medium|high"
    }
  ],
  "coordinationSignals": ["signal 1", "signal 2"]
}`)

	return b.String()
}

func timingData(reviews []domain.PreprocessedReview) string {
	entries := make([]timingEntry, 0, len(reviews))
	for i, r := range reviews {
		if !r.HasDate {
			continue
		}
		entries = append(entries, timingEntry{Index: i + 1, Date: r.ReviewDate, Rating: r.Rating})
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func dateLabel(date string) string {
	if date == "" {
		return "Unknown"
	}
	return date
}

func scoreLabel(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%g", *score)
}
