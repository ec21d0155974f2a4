// Package domain contains the core entities shared across the analysis pipeline.
package domain

// RawReview is a single review as supplied by the caller. It is never
// mutated once received.
type RawReview struct {
	ID         string `json:"id,omitempty"`
	Content    string `json:"content"`
	Rating     int    `json:"rating,omitempty"`      // 1-5, 0 when unrated
	ReviewDate string `json:"review_date,omitempty"` // ISO date or date/time
	Language   string `json:"language,omitempty"`    // locale code, empty triggers detection
}

// PreprocessedReview is a RawReview with normalization metadata attached.
// The 1-based position within the batch is the only identifier later
// stages use to refer back to a review.
type PreprocessedReview struct {
	RawReview

	NormalizedContent string `json:"normalizedContent"` // lowercased, whitespace-collapsed
	DetectedLanguage  string `json:"detectedLanguage"`
	WordCount         int    `json:"wordCount"`
	HasDate           bool   `json:"hasDate"`
}

// TimelinePoint is the review count for one calendar day.
type TimelinePoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}
