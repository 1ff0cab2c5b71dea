package narrative

import (
	"context"
	"fmt"
	"log"
	"time"

	"PortfolioPulse/internal/cache"
	"PortfolioPulse/internal/model"
)

const (
	keyPrefix        = "ai_"
	unconfiguredText = "AI summary not configured: no narrative API key is set"
	unavailableText  = "AI temporarily unavailable: %v"
)

// Service wraps the generator with the summary cache. It never returns an error: missing
// credentials and failed calls produce a fallback Summary that is not cached.
type Service struct {
	gen     Generator
	cache   *cache.Cache
	timeout time.Duration
}

// NewService builds a Service. gen may be nil when no credential is configured.
func NewService(gen Generator, c *cache.Cache, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Service{gen: gen, cache: c, timeout: timeout}
}

// CacheKey is the cache key for an investor's narrative.
func CacheKey(investorID string) string {
	return keyPrefix + investorID
}

// Summarize returns the cached narrative for the report's investor or generates a fresh one.
// The cache is keyed by investor only, so a stale narrative may outlive report changes for up to one TTL.
func (s *Service) Summarize(ctx context.Context, r *model.Report) model.Summary {
	key := CacheKey(r.InvestorID)
	if e, ok := s.cache.Get(ctx, key); ok {
		return model.Summary{Summary: e.Payload, Status: model.SummaryCached, Model: e.Model}
	}

	if s.gen == nil {
		log.Printf("[WARN] narrative for %s skipped: %v", r.InvestorID, ErrNoCredential)
		return model.Summary{Summary: unconfiguredText, Status: model.SummaryUnconfigured}
	}

	prompt, err := NewDigest(r).Prompt()
	if err != nil {
		return s.unavailable(r.InvestorID, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	text, err := s.gen.Generate(callCtx, Request{System: systemPrompt, Prompt: prompt})
	if err != nil {
		return s.unavailable(r.InvestorID, err)
	}

	if err := s.cache.Put(ctx, key, text, s.gen.Model()); err != nil {
		log.Printf("[WARN] %v", err)
	}
	return model.Summary{Summary: text, Status: model.SummaryGenerated, Model: s.gen.Model()}
}

func (s *Service) unavailable(investorID string, err error) model.Summary {
	log.Printf("[ERROR] narrative for %s failed: %v", investorID, err)
	return model.Summary{Summary: fmt.Sprintf(unavailableText, err), Status: model.SummaryUnavailable}
}
