package domain

// BatchStatus tracks the lifecycle of a stored analysis batch.
type BatchStatus string

// Batch lifecycle states.
const (
	BatchPending   BatchStatus = "pending"
	BatchAnalyzing BatchStatus = "analyzing"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// PreprocessingSummary summarizes the deterministic preprocessing stage.
type PreprocessingSummary struct {
	ReviewCount      int      `json:"reviewCount"`
	Languages        []string `json:"languages"` // distinct, in first-seen order
	AverageWordCount int      `json:"averageWordCount"`
}

// StageResults holds every stage's output, degraded or not.
type StageResults struct {
	Preprocessing        PreprocessingSummary `json:"preprocessing"`
	PatternDiscovery     PatternFindings      `json:"patternDiscovery"`
	CoordinationAnalysis CoordinationFindings `json:"coordinationAnalysis"`
	IntegrityAssessment  IntegrityFindings    `json:"integrityAssessment"`
}

// Summary is the presentation-facing digest of a completed analysis.
type Summary struct {
	ManipulationBand      string          `json:"manipulationBand"`
	KeySignals            []KeySignal     `json:"keySignals"`
	ConfidenceExplanation string          `json:"confidenceExplanation"`
	Clusters              []Cluster       `json:"clusters"`
	TimelineData          []TimelinePoint `json:"timelineData"`
}

// AnalysisResult is the final envelope for one pipeline run. It is built
// once and never mutated afterwards.
type AnalysisResult struct {
	BatchID     string       `json:"batchId"`
	ReviewCount int          `json:"reviewCount"`
	Degraded    bool         `json:"degraded"` // true when any stage output is a parse-failure placeholder
	Stages      StageResults `json:"stages"`
	Summary     Summary      `json:"summary"`
}
