//nolint:testpackage // Testing internal preprocessing requires same package access
package preprocess

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BRANOPODCAST/ReviewScope/internal/domain"
)

func TestRun_TruncatesOversizedBatch(t *testing.T) {
	reviews := make([]domain.RawReview, 75)
	for i := range reviews {
		reviews[i] = domain.RawReview{Content: fmt.Sprintf("review number %d", i)}
	}

	out := Run(reviews)

	require.Len(t, out, MaxBatchSize)
	assert.Equal(t, "review number 0", out[0].NormalizedContent)
	assert.Equal(t, "review number 49", out[MaxBatchSize-1].NormalizedContent)
}

func TestRun_Metadata(t *testing.T) {
	reviews := []domain.RawReview{
		{Content: "  Great   Product,  Would\tBuy  Again  ", ReviewDate: "2024-03-01T10:00:00Z"},
		{ID: "custom-id", Content: "ok", Language: "de"},
		{Content: ""},
	}

	out := Run(reviews)
	require.Len(t, out, 3)

	first := out[0]
	assert.Equal(t, "review-0", first.ID)
	assert.Equal(t, "great product, would buy again", first.NormalizedContent)
	assert.Equal(t, 5, first.WordCount)
	assert.True(t, first.HasDate)
	assert.Equal(t, "en", first.DetectedLanguage)

	second := out[1]
	assert.Equal(t, "custom-id", second.ID)
	assert.Equal(t, "de", second.DetectedLanguage, "explicit language wins over detection")
	assert.False(t, second.HasDate)

	third := out[2]
	assert.Equal(t, "review-2", third.ID)
	assert.Equal(t, 0, third.WordCount)
	assert.Equal(t, "en", third.DetectedLanguage)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapses runs", "a  b\t\tc\n d", "a b c d"},
		{"trims", "  hello  ", "hello"},
		{"lowercases", "LOUD Review", "loud review"},
		{"empty", "", ""},
		{"whitespace only", "   \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
