package analyzer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"PortfolioPulse/internal/cache"
	"PortfolioPulse/internal/collector"
	"PortfolioPulse/internal/metrics"
	"PortfolioPulse/internal/model"
	"PortfolioPulse/internal/recorder"
)

var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

type stubSummarizer struct {
	calls   int32
	panicOn string
}

func (s *stubSummarizer) Summarize(_ context.Context, r *model.Report) model.Summary {
	atomic.AddInt32(&s.calls, 1)
	if r.InvestorID == s.panicOn {
		panic("generator client nil")
	}
	return model.Summary{Summary: "summary for " + r.InvestorID, Status: model.SummaryGenerated}
}

type flakyRecorder struct {
	*recorder.MemoryRecorder
	failOn string
}

func (f *flakyRecorder) SaveAnalysis(ctx context.Context, res *model.AnalysisResult) error {
	if res.InvestorID == f.failOn {
		return errors.New("disk full")
	}
	return f.MemoryRecorder.SaveAnalysis(ctx, res)
}

func population(n int) []model.Investor {
	out := make([]model.Investor, n)
	for i := range out {
		out[i] = model.Investor{
			InvestorID:  fmt.Sprintf("INV%03d", i+1),
			Name:        fmt.Sprintf("Investor %d", i+1),
			TotalAUM:    model.Num(10000 * (i + 1)),
			GainLossPct: model.Num(i - 3),
			Holdings: []model.Holding{
				{AMCName: "HDFC", Category: model.CategoryEquity, SchemeName: "Top 100", CurrentValue: 6000},
				{AMCName: "SBI", Category: model.CategoryDebt, SchemeName: "Gilt", CurrentValue: 4000},
			},
		}
	}
	return out
}

func newTestService(investors []model.Investor, narr Summarizer, rec recorder.Recorder) *Service {
	eng := metrics.NewEngine(metrics.WithClock(func() time.Time { return fixedNow }))
	c := cache.New(cache.NewMemoryStore(), time.Hour)
	svc := NewService(collector.NewMemorySource(investors), eng, narr, c, rec, 3)
	svc.Now = func() time.Time { return fixedNow }
	return svc
}

func TestAnalyze_PersistsResult(t *testing.T) {
	ctx := context.Background()
	rec := recorder.NewMemoryRecorder()
	svc := newTestService(population(2), &stubSummarizer{}, rec)

	res, err := svc.Analyze(ctx, "INV002")
	if err != nil {
		t.Fatal(err)
	}
	if res.ID == "" || res.InvestorID != "INV002" || !res.CreatedAt.Equal(fixedNow) {
		t.Errorf("result = %+v", res)
	}
	if res.Analysis.Allocation.Allocation[model.CategoryEquity] != 60 {
		t.Errorf("allocation = %v", res.Analysis.Allocation)
	}
	if res.Summary.Summary != "summary for INV002" {
		t.Errorf("summary = %+v", res.Summary)
	}

	stored, err := svc.CachedAnalysis(ctx, "INV002")
	if err != nil {
		t.Fatal(err)
	}
	if stored.ID != res.ID {
		t.Errorf("stored id = %s, want %s", stored.ID, res.ID)
	}
}

func TestAnalyze_Errors(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(population(1), &stubSummarizer{}, recorder.NewMemoryRecorder())

	if _, err := svc.Analyze(ctx, "NOPE"); !errors.Is(err, collector.ErrInvestorNotFound) {
		t.Errorf("err = %v, want ErrInvestorNotFound", err)
	}
	if _, err := svc.CachedAnalysis(ctx, "INV001"); !errors.Is(err, recorder.ErrNotFound) {
		t.Errorf("err = %v, want recorder.ErrNotFound", err)
	}
}

func TestAnalyzeBulk_IsolatesFailures(t *testing.T) {
	ctx := context.Background()
	rec := &flakyRecorder{MemoryRecorder: recorder.NewMemoryRecorder(), failOn: "INV002"}
	narr := &stubSummarizer{panicOn: "INV004"}
	investors := population(5)
	investors[2].InvestorID = ""
	svc := newTestService(investors, narr, rec)

	res, err := svc.AnalyzeBulk(ctx, 0, TriggerManual)
	if err != nil {
		t.Fatal(err)
	}
	if res.RunID == "" || res.Count != 5 || len(res.Items) != 5 {
		t.Fatalf("result = %+v", res)
	}
	wantStatus := []string{model.BulkSuccess, model.BulkError, model.BulkError, model.BulkError, model.BulkSuccess}
	for i, item := range res.Items {
		if item.Status != wantStatus[i] {
			t.Errorf("item %d (%s) status = %s, want %s: %s", i, item.InvestorID, item.Status, wantStatus[i], item.Error)
		}
	}
	if res.Items[0].InvestorID != "INV001" || res.Items[4].InvestorID != "INV005" {
		t.Errorf("items out of source order: %s .. %s", res.Items[0].InvestorID, res.Items[4].InvestorID)
	}
	if res.Items[1].Error == "" || res.Items[1].Analysis != nil {
		t.Errorf("failed item = %+v", res.Items[1])
	}
	if res.Items[0].Analysis == nil || res.Items[0].Summary == nil {
		t.Errorf("successful item missing payload: %+v", res.Items[0])
	}
	if res.Succeeded != 2 || res.Failed != 3 {
		t.Errorf("succeeded/failed = %d/%d", res.Succeeded, res.Failed)
	}

	runs, _ := rec.RecentBulkRuns(ctx, 1)
	if len(runs) != 1 || runs[0].RunID != res.RunID || runs[0].Trigger != TriggerManual || runs[0].Failed != 3 {
		t.Errorf("bulk run = %+v", runs)
	}
	if _, err := rec.GetAnalysis(ctx, "INV005"); err != nil {
		t.Errorf("INV005 not persisted: %v", err)
	}
}

func TestAnalyzeBulk_EveryItemFailing(t *testing.T) {
	investors := population(4)
	for i := range investors {
		investors[i].InvestorID = ""
	}
	svc := newTestService(investors, &stubSummarizer{}, recorder.NewMemoryRecorder())
	svc.Concurrency = 1

	res, err := svc.AnalyzeBulk(context.Background(), 0, TriggerManual)
	if err != nil {
		t.Fatalf("per-item failures must not fail the run: %v", err)
	}
	if len(res.Items) != 4 || res.Failed != 4 || res.Succeeded != 0 {
		t.Errorf("result = %+v", res)
	}
	for i, item := range res.Items {
		if item.Status != model.BulkError || item.Error != "investor_id missing" {
			t.Errorf("item %d = %+v", i, item)
		}
	}
}

func TestAnalyzeBulk_DefaultLimit(t *testing.T) {
	svc := newTestService(population(12), &stubSummarizer{}, recorder.NewMemoryRecorder())
	res, err := svc.AnalyzeBulk(context.Background(), 0, TriggerManual)
	if err != nil {
		t.Fatal(err)
	}
	if res.Count != DefaultBulkLimit {
		t.Errorf("count = %d, want %d", res.Count, DefaultBulkLimit)
	}
	res, _ = svc.AnalyzeBulk(context.Background(), 50, TriggerManual)
	if res.Count != 12 {
		t.Errorf("count = %d, want 12", res.Count)
	}
}

func TestDashboard(t *testing.T) {
	ctx := context.Background()
	empty := newTestService(nil, &stubSummarizer{}, recorder.NewMemoryRecorder())
	d, err := empty.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !d.NeedsSeeding {
		t.Error("empty population must need seeding")
	}

	full := newTestService(population(4), &stubSummarizer{}, recorder.NewMemoryRecorder())
	d, err = full.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.NeedsSeeding || d.TotalInvestors != 4 || d.TotalAUM != 100000 {
		t.Errorf("dashboard = %+v", d)
	}
	if d.ProfitLossSplit.Profit != 1 || d.ProfitLossSplit.Loss != 3 {
		t.Errorf("split = %+v", d.ProfitLossSplit)
	}
}

func TestPurgeCache(t *testing.T) {
	svc := newTestService(nil, &stubSummarizer{}, recorder.NewMemoryRecorder())
	if n, err := svc.PurgeCache(context.Background()); err != nil || n != 0 {
		t.Errorf("purge = %d, %v", n, err)
	}
}
