// Package preprocess normalizes an inbound review batch and attaches the
// metadata later pipeline stages depend on. It is deterministic and total:
// malformed items pass through with best-effort metadata.
package preprocess

import (
	"fmt"
	"strings"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
	"github.com/BRANOPODCAST/ReviewScope/internal/language"
)

// MaxBatchSize is the hard cap on a single batch. Items beyond it are
// silently dropped, not errored.
const MaxBatchSize = 50

// Run caps the batch and produces one PreprocessedReview per retained item.
func Run(reviews []domain.RawReview) []domain.PreprocessedReview {
	if len(reviews) > MaxBatchSize {
		reviews = reviews[:MaxBatchSize]
	}

	out := make([]domain.PreprocessedReview, 0, len(reviews))
	for i, review := range reviews {
		if review.ID == "" {
			review.ID = fmt.Sprintf("review-%d", i)
		}

		normalized := Normalize(review.Content)

		detected := review.Language
		if detected == "" {
			// Detection runs on the original content; normalization
			// strips casing cues some locales rely on.
			detected = language.Detect(review.Content)
		}

		out = append(out, domain.PreprocessedReview{
			RawReview:         review,
			NormalizedContent: normalized,
			DetectedLanguage:  detected,
			WordCount:         wordCount(normalized),
			HasDate:           review.ReviewDate != "",
		})
	}
	return out
}

// Normalize trims, collapses internal whitespace runs to a single space and
// lowercases the content.
func Normalize(content string) string {
	return strings.ToLower(strings.Join(strings.Fields(content), " "))
}

func wordCount(normalized string) int {
	if normalized == "" {
		return 0
	}
	return len(strings.Split(normalized, " "))
}
