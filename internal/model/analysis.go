package model

import "time"

// Narrative summary statuses.
const (
	SummaryGenerated    = "generated"
	SummaryCached       = "cached"
	SummaryUnconfigured = "unconfigured"
	SummaryUnavailable  = "unavailable"
)

// Summary is the narrative payload attached to an analysis. Fallback summaries carry an
// explanatory text and a non-generated status instead of an error.
type Summary struct {
	Summary string `json:"summary"`
	Status  string `json:"status"`
	Model   string `json:"model,omitempty"`
}

// Fallback reports whether the summary is an explanatory placeholder.
func (s Summary) Fallback() bool {
	return s.Status == SummaryUnconfigured || s.Status == SummaryUnavailable
}

// AnalysisResult is the persisted outcome of analysing one investor. One row per investor; the
// latest write wins.
type AnalysisResult struct {
	ID         string    `json:"id"`
	InvestorID string    `json:"investor_id"`
	RunID      string    `json:"run_id,omitempty"`
	Analysis   *Report   `json:"analysis_result"`
	Summary    Summary   `json:"ai_summary"`
	CreatedAt  time.Time `json:"created_at"`
}

// Bulk item statuses.
const (
	BulkSuccess = "success"
	BulkError   = "error"
)

// BulkItem is the per-investor outcome inside a bulk run.
type BulkItem struct {
	InvestorID string   `json:"investor_id"`
	Status     string   `json:"status"`
	Analysis   *Report  `json:"analysis,omitempty"`
	Summary    *Summary `json:"summary,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// BulkResult is the outcome of one bulk run.
type BulkResult struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	Count      int        `json:"count"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	Items      []BulkItem `json:"data"`
}
