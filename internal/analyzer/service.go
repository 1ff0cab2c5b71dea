package analyzer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"PortfolioPulse/internal/cache"
	"PortfolioPulse/internal/collector"
	"PortfolioPulse/internal/dashboard"
	"PortfolioPulse/internal/metrics"
	"PortfolioPulse/internal/model"
	"PortfolioPulse/internal/narrative"
	"PortfolioPulse/internal/recorder"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultBulkLimit is used when a bulk request does not name a limit.
const DefaultBulkLimit = 10

// Bulk run triggers.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// Summarizer produces the narrative for a report. *narrative.Service satisfies it.
type Summarizer interface {
	Summarize(ctx context.Context, r *model.Report) model.Summary
}

// Service sequences metrics, narrative and persistence for single and bulk requests.
type Service struct {
	Source      collector.Source
	Engine      *metrics.Engine
	Builder     *dashboard.Builder
	Narrative   Summarizer
	Cache       *cache.Cache
	Recorder    recorder.Recorder
	Concurrency int
	Now         func() time.Time
}

// NewService wires the collaborators with the default dashboard builder and the wall clock.
func NewService(src collector.Source, eng *metrics.Engine, narr Summarizer, c *cache.Cache, rec recorder.Recorder, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Service{
		Source:      src,
		Engine:      eng,
		Builder:     dashboard.NewBuilder(),
		Narrative:   narr,
		Cache:       c,
		Recorder:    rec,
		Concurrency: concurrency,
		Now:         time.Now,
	}
}

// Analyze evaluates one investor, attaches the narrative and persists the result.
func (s *Service) Analyze(ctx context.Context, investorID string) (*model.AnalysisResult, error) {
	inv, err := s.Source.Get(ctx, investorID)
	if err != nil {
		return nil, fmt.Errorf("load investor %s: %w", investorID, err)
	}
	return s.analyze(ctx, inv, "")
}

func (s *Service) analyze(ctx context.Context, inv *model.Investor, runID string) (*model.AnalysisResult, error) {
	report := s.Engine.Evaluate(inv)
	summary := s.Narrative.Summarize(ctx, report)

	res := &model.AnalysisResult{
		ID:         uuid.NewString(),
		InvestorID: inv.InvestorID,
		RunID:      runID,
		Analysis:   report,
		Summary:    summary,
		CreatedAt:  s.Now(),
	}
	if err := s.Recorder.SaveAnalysis(ctx, res); err != nil {
		return nil, fmt.Errorf("save analysis %s: %w", inv.InvestorID, err)
	}
	return res, nil
}

// AnalyzeBulk analyses up to limit investors with bounded concurrency. A failure for one investor
// is recorded in its item and never stops the others. Items keep source order. The call fails only
// when the population cannot be listed.
func (s *Service) AnalyzeBulk(ctx context.Context, limit int, trigger string) (*model.BulkResult, error) {
	if limit <= 0 {
		limit = DefaultBulkLimit
	}
	investors, err := s.Source.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list investors: %w", err)
	}

	result := &model.BulkResult{
		RunID:     uuid.NewString(),
		StartedAt: s.Now(),
		Count:     len(investors),
		Items:     make([]model.BulkItem, len(investors)),
	}
	log.Printf("[INFO] bulk run %s started: %d investors", result.RunID, len(investors))

	// Workers never return an error; failures are recorded per item.
	var g errgroup.Group
	g.SetLimit(s.Concurrency)
	for i := range investors {
		inv := &investors[i]
		g.Go(func() error {
			result.Items[i] = s.bulkItem(ctx, inv, result.RunID)
			return nil
		})
	}
	_ = g.Wait()

	for _, item := range result.Items {
		if item.Status == model.BulkSuccess {
			result.Succeeded++
		} else {
			result.Failed++
		}
	}
	result.FinishedAt = s.Now()

	run := &recorder.BulkRun{
		RunID:      result.RunID,
		Trigger:    trigger,
		StartedAt:  result.StartedAt,
		FinishedAt: result.FinishedAt,
		Count:      result.Count,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed,
	}
	if err := s.Recorder.RecordBulkRun(ctx, run); err != nil {
		log.Printf("[ERROR] record bulk run %s: %v", result.RunID, err)
	}
	log.Printf("[INFO] bulk run %s finished: %d ok, %d failed", result.RunID, result.Succeeded, result.Failed)
	return result, nil
}

func (s *Service) bulkItem(ctx context.Context, inv *model.Investor, runID string) (item model.BulkItem) {
	item.InvestorID = inv.InvestorID
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ERROR] bulk analysis of %s panicked: %v", inv.InvestorID, rec)
			item = model.BulkItem{InvestorID: inv.InvestorID, Status: model.BulkError, Error: fmt.Sprintf("panic: %v", rec)}
		}
	}()

	if inv.InvestorID == "" {
		return model.BulkItem{Status: model.BulkError, Error: "investor_id missing"}
	}
	res, err := s.analyze(ctx, inv, runID)
	if err != nil {
		log.Printf("[WARN] bulk analysis of %s failed: %v", inv.InvestorID, err)
		item.Status = model.BulkError
		item.Error = err.Error()
		return item
	}
	item.Status = model.BulkSuccess
	item.Analysis = res.Analysis
	item.Summary = &res.Summary
	return item
}

// CachedAnalysis returns the last persisted result for the investor.
func (s *Service) CachedAnalysis(ctx context.Context, investorID string) (*model.AnalysisResult, error) {
	res, err := s.Recorder.GetAnalysis(ctx, investorID)
	if err != nil {
		if errors.Is(err, recorder.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load analysis %s: %w", investorID, err)
	}
	return res, nil
}

// Dashboard scans the whole population and rebuilds the rollup.
func (s *Service) Dashboard(ctx context.Context) (*model.DashboardReport, error) {
	investors, err := s.Source.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list investors: %w", err)
	}
	report := s.Builder.Build(investors, s.Now())
	return &report, nil
}

// PurgeCache removes expired narratives from the cache store.
func (s *Service) PurgeCache(ctx context.Context) (int, error) {
	return s.Cache.Purge(ctx)
}

// RecentRuns lists the latest bulk runs.
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]recorder.BulkRun, error) {
	return s.Recorder.RecentBulkRuns(ctx, limit)
}

var _ Summarizer = (*narrative.Service)(nil)
