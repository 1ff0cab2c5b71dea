package recorder

import (
	"context"
	"errors"
	"time"

	"PortfolioPulse/internal/model"
)

// ErrNotFound is returned when no analysis has been stored for an investor.
var ErrNotFound = errors.New("analysis not found")

// BulkRun summarises one bulk analysis run.
type BulkRun struct {
	RunID      string    `json:"run_id"`
	Trigger    string    `json:"trigger"` // "manual" or "schedule"
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Count      int       `json:"count"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
}

// Recorder persists analysis results. One result is kept per investor; the latest write wins.
type Recorder interface {
	SaveAnalysis(ctx context.Context, res *model.AnalysisResult) error
	GetAnalysis(ctx context.Context, investorID string) (*model.AnalysisResult, error)
	RecordBulkRun(ctx context.Context, run *BulkRun) error
	// RecentBulkRuns returns up to limit runs, newest first.
	RecentBulkRuns(ctx context.Context, limit int) ([]BulkRun, error)
	Close() error
}
