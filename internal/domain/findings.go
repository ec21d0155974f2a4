package domain

// ParseFailure is substituted for a stage's findings when the reasoning
// service response could not be coerced into JSON. The pipeline does not
// halt on it; the degraded object is forwarded to later stages as context.
type ParseFailure struct {
	Error string `json:"error,omitempty"`
	Raw   string `json:"raw,omitempty"` // first 500 characters of the response
}

// Degraded reports whether this stage's output is a parse-failure placeholder.
func (p ParseFailure) Degraded() bool {
	return p.Error != ""
}

// SetParseFailure stamps the degraded placeholder onto the findings it is
// embedded in.
func (p *ParseFailure) SetParseFailure(failure ParseFailure) {
	*p = failure
}

// PatternFindings is the structured output of the pattern discovery stage.
// All values are derived by the reasoning service, never computed locally.
type PatternFindings struct {
	ParseFailure

	LinguisticSimilarityScore *float64             `json:"linguisticSimilarityScore,omitempty"` // 0-100
	SimilarPhrases            []SimilarPhrase      `json:"similarPhrases,omitempty"`
	EmotionalPatterns         []EmotionalPattern   `json:"emotionalPatterns,omitempty"`
	TemplateIndicators        []TemplateIndicator  `json:"templateIndicators,omitempty"`
	CrossLanguageMatches      []CrossLanguageMatch `json:"crossLanguageMatches,omitempty"`
	Observations              []string             `json:"observations,omitempty"`
}

// SimilarPhrase is a phrase shared across reviews.
type SimilarPhrase struct {
	Phrase        string `json:"phrase"`
	ReviewIndices []int  `json:"reviewIndices"` // 1-based
	Frequency     int    `json:"frequency"`
}

// EmotionalPattern is a recurring emotional exaggeration pattern.
type EmotionalPattern struct {
	Pattern       string `json:"pattern"`
	ReviewIndices []int  `json:"reviewIndices"`
	Intensity     string `json:"intensity"` // low|medium|high
}

// TemplateIndicator marks cookie-cutter phrasing.
type TemplateIndicator struct {
	Indicator     string `json:"indicator"`
	ReviewIndices []int  `json:"reviewIndices"`
}

// CrossLanguageMatch is the same concept reused across locales.
type CrossLanguageMatch struct {
	Concept       string   `json:"concept"`
	Languages     []string `json:"languages"`
	ReviewIndices []int    `json:"reviewIndices"`
}

// CoordinationFindings is the structured output of the coordination
// analysis stage.
type CoordinationFindings struct {
	ParseFailure

	TimingAnalysis      *TimingAnalysis  `json:"timingAnalysis,omitempty"`
	RatingMismatches    []RatingMismatch `json:"ratingMismatches,omitempty"`
	Clusters            []Cluster        `json:"clusters,omitempty"`
	CoordinationSignals []string         `json:"coordinationSignals,omitempty"`
}

// TimingAnalysis describes the temporal distribution of the batch.
type TimingAnalysis struct {
	BurstsPeriods     []BurstPeriod `json:"burstsPeriods"`
	DistributionScore float64       `json:"distributionScore"` // 0-100, 100 = perfectly even
	SuspiciousTiming  bool          `json:"suspiciousTiming"`
}

// BurstPeriod is a window with an unusual concentration of reviews.
type BurstPeriod struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Count     int    `json:"count"`
}

// RatingMismatch flags a review whose text sentiment disagrees with its rating.
type RatingMismatch struct {
	ReviewIndex       int    `json:"reviewIndex"` // 1-based
	Rating            int    `json:"rating"`
	SentimentDetected string `json:"sentimentDetected"`
	MismatchSeverity  string `json:"mismatchSeverity"` // low|medium|high
}

// Cluster groups reviews that may share coordinated authorship.
type Cluster struct {
	ClusterID              int      `json:"clusterId"`
	ReviewIndices          []int    `json:"reviewIndices"`
	CommonCharacteristics  []string `json:"commonCharacteristics"`
	CoordinationLikelihood string   `json:"coordinationLikelihood"` // low|medium|high
}

// IntegrityFindings is the structured output of the final assessment stage.
// This is the only stage permitted to assign a manipulation band.
type IntegrityFindings struct {
	ParseFailure

	ManipulationBand      string      `json:"manipulationBand,omitempty"` // Low|Medium|High
	BandRationale         string      `json:"bandRationale,omitempty"`
	KeySignals            []KeySignal `json:"keySignals,omitempty"`
	ConfidenceExplanation string      `json:"confidenceExplanation,omitempty"`
	Limitations           []string    `json:"limitations,omitempty"`
	Recommendations       []string    `json:"recommendations,omitempty"`
	OverallAssessment     string      `json:"overallAssessment,omitempty"`
}

// KeySignal is one of the most important findings across all stages.
type KeySignal struct {
	Signal          string `json:"signal"`
	Significance    string `json:"significance"` // low|medium|high
	AffectedReviews []int  `json:"affectedReviews"`
}
