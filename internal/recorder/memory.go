package recorder

import (
	"context"
	"sort"
	"sync"

	"PortfolioPulse/internal/model"
)

// MemoryRecorder keeps results in process memory. Used when no database is configured and in tests.
type MemoryRecorder struct {
	mu       sync.RWMutex
	analyses map[string]model.AnalysisResult
	runs     []BulkRun
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{analyses: make(map[string]model.AnalysisResult)}
}

func (m *MemoryRecorder) SaveAnalysis(_ context.Context, res *model.AnalysisResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.analyses[res.InvestorID] = *res
	return nil
}

func (m *MemoryRecorder) GetAnalysis(_ context.Context, investorID string) (*model.AnalysisResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res, ok := m.analyses[investorID]
	if !ok {
		return nil, ErrNotFound
	}
	return &res, nil
}

func (m *MemoryRecorder) RecordBulkRun(_ context.Context, run *BulkRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *MemoryRecorder) RecentBulkRuns(_ context.Context, limit int) ([]BulkRun, error) {
	m.mu.RLock()
	runs := make([]BulkRun, len(m.runs))
	copy(runs, m.runs)
	m.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.After(runs[j].StartedAt) })
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MemoryRecorder) Close() error { return nil }
