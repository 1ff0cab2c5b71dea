package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"PortfolioPulse/internal/analyzer"
	"PortfolioPulse/internal/collector"
	"PortfolioPulse/internal/notifier"
	"PortfolioPulse/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler manages all cron tasks and the chat command surface.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Service
	Notifier  notifier.Notifier
	BulkLimit int
	Ctx       context.Context

	router *notifier.Router
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, svc *analyzer.Service, n notifier.Notifier, bulkLimit int) *Scheduler {
	if n == nil {
		n = notifier.Noop{}
	}
	s := &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Analyzer:  svc,
		Notifier:  n,
		BulkLimit: bulkLimit,
		Ctx:       ctx,
	}
	s.router = s.commands()
	return s
}

// RegisterAll registers the bulk refresh and cache purge tasks.
func (s *Scheduler) RegisterAll(bulkCron, purgeCron string) error {
	if _, err := s.Cron.AddFunc(bulkCron, s.bulkTask); err != nil {
		return fmt.Errorf("register bulk task: %w", err)
	}
	if _, err := s.Cron.AddFunc(purgeCron, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[INFO] scheduler stopped")
}

// RunBulkNow executes the bulk task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunBulkNow() {
	s.bulkTask()
}

func (s *Scheduler) bulkTask() {
	log.Println("[INFO] running scheduled bulk analysis")
	res, err := s.Analyzer.AnalyzeBulk(s.Ctx, s.BulkLimit, analyzer.TriggerSchedule)
	if err != nil {
		log.Printf("[ERROR] scheduled bulk analysis: %v", err)
		s.trySend(fmt.Sprintf("❌ Scheduled bulk analysis failed: %v", err))
		return
	}
	report := notifier.FormatBulkDigest(res)

	// Append dashboard
	if d, err := s.Analyzer.Dashboard(s.Ctx); err != nil {
		log.Printf("[ERROR] dashboard after bulk run: %v", err)
	} else {
		report += "\n" + notifier.FormatDashboard(d)
	}
	s.trySend(report)
}

func (s *Scheduler) purgeTask() {
	n, err := s.Analyzer.PurgeCache(s.Ctx)
	if err != nil {
		log.Printf("[ERROR] purge summary cache: %v", err)
		return
	}
	log.Printf("[INFO] purged %d expired summaries", n)
}

// HandleCommand processes a chat message and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, text string) string {
	return s.router.Dispatch(ctx, text)
}

func (s *Scheduler) commands() *notifier.Router {
	r := notifier.NewRouter()
	r.Handle("analyze", func(ctx context.Context, args []string) string {
		if len(args) != 1 {
			return "Usage: /analyze <investor_id>"
		}
		res, err := s.Analyzer.Analyze(ctx, args[0])
		if errors.Is(err, collector.ErrInvestorNotFound) {
			return "Investor not found: " + args[0]
		}
		if err != nil {
			log.Printf("[ERROR] /analyze %s: %v", args[0], err)
			return "Analysis failed, see logs."
		}
		return notifier.FormatAnalysis(res)
	})
	r.Handle("summary", func(ctx context.Context, args []string) string {
		if len(args) != 1 {
			return "Usage: /summary <investor_id>"
		}
		res, err := s.Analyzer.CachedAnalysis(ctx, args[0])
		if errors.Is(err, recorder.ErrNotFound) {
			return "No stored analysis for " + args[0] + ". Run /analyze first."
		}
		if err != nil {
			log.Printf("[ERROR] /summary %s: %v", args[0], err)
			return "Lookup failed, see logs."
		}
		return notifier.FormatAnalysis(res)
	})
	r.Handle("dashboard", func(ctx context.Context, _ []string) string {
		d, err := s.Analyzer.Dashboard(ctx)
		if err != nil {
			log.Printf("[ERROR] /dashboard: %v", err)
			return "Dashboard failed, see logs."
		}
		return notifier.FormatDashboard(d)
	})
	r.Handle("bulk", func(ctx context.Context, args []string) string {
		limit := 0
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return "Usage: /bulk [limit]"
			}
			limit = n
		}
		res, err := s.Analyzer.AnalyzeBulk(ctx, limit, analyzer.TriggerManual)
		if err != nil {
			log.Printf("[ERROR] /bulk: %v", err)
			return "Bulk analysis failed, see logs."
		}
		return notifier.FormatBulkDigest(res)
	})
	r.Handle("runs", func(ctx context.Context, _ []string) string {
		runs, err := s.Analyzer.RecentRuns(ctx, 5)
		if err != nil {
			log.Printf("[ERROR] /runs: %v", err)
			return "Lookup failed, see logs."
		}
		return notifier.FormatRuns(runs)
	})
	return r
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Notify(s.Ctx, text); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}
}
