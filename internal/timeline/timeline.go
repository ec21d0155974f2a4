// Package timeline buckets dated reviews into a per-day count series for
// the density chart. It depends only on preprocessor output and can run
// concurrently with the reasoning stages.
package timeline

import (
	"sort"
	"strings"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

// Aggregate groups dated reviews by calendar day and returns the counts
// sorted ascending by date. The sum of counts always equals the number of
// reviews carrying a date.
func Aggregate(reviews []domain.PreprocessedReview) []domain.TimelinePoint {
	groups := make(map[string]int)
	for _, review := range reviews {
		if !review.HasDate {
			continue
		}
		groups[calendarDay(review.ReviewDate)]++
	}

	points := make([]domain.TimelinePoint, 0, len(groups))
	for date, count := range groups {
		points = append(points, domain.TimelinePoint{Date: date, Count: count})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	return points
}

// calendarDay truncates an ISO date/time to its day component.
func calendarDay(date string) string {
	if idx := strings.IndexByte(date, 'T'); idx >= 0 {
		return date[:idx]
	}
	return date
}
