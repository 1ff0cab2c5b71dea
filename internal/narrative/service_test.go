package narrative

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"PortfolioPulse/internal/cache"
	"PortfolioPulse/internal/model"
)

type stubGenerator struct {
	mu    sync.Mutex
	calls int
	text  string
	err   error
	delay time.Duration
	last  Request
}

func (s *stubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	s.calls++
	s.last = req
	s.mu.Unlock()
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.delay):
		}
	}
	return s.text, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func (s *stubGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func newCache(c *clock) *cache.Cache {
	return cache.New(cache.NewMemoryStore(), time.Hour, cache.WithClock(c.Now))
}

func sampleReport() *model.Report {
	alert := "Risk Mismatch: Equity 85% but profile Low"
	r := &model.Report{
		InvestorID:      "INV001",
		Performance:     model.Performance{Value: 125000, GainLoss: 12.5},
		Concentration:   model.Concentration{Alerts: []model.AMCAlert{{Type: "HighAMCConcentration", AMC: "HDFC", Pct: 45}}},
		Diversification: model.Diversification{Score: 52},
		RiskMismatch:    model.RiskMismatch{EquityShare: 85, Alert: &alert},
		ChurnRisk:       model.ChurnRisk{ChurnRisk: "Low"},
	}
	r.UnderperformanceAlerts = []model.SchemeLoss{{Scheme: "Axis Midcap", Loss: -4.2}}
	return r
}

func TestSummarize_CachesAndExpires(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
	gen := &stubGenerator{text: "Healthy, diversified portfolio."}
	svc := NewService(gen, newCache(clk), time.Second)

	first := svc.Summarize(ctx, sampleReport())
	if first.Status != model.SummaryGenerated || first.Summary != gen.text || first.Model != "stub-model" {
		t.Fatalf("first = %+v", first)
	}
	if gen.last.System != systemPrompt || !strings.Contains(gen.last.Prompt, `"investor_id": "INV001"`) {
		t.Errorf("request = %+v", gen.last)
	}

	second := svc.Summarize(ctx, sampleReport())
	if second.Status != model.SummaryCached || second.Summary != gen.text {
		t.Errorf("second = %+v", second)
	}
	if gen.Calls() != 1 {
		t.Errorf("calls = %d, want 1", gen.Calls())
	}

	clk.t = clk.t.Add(time.Hour + time.Second)
	third := svc.Summarize(ctx, sampleReport())
	if third.Status != model.SummaryGenerated {
		t.Errorf("expired entry should regenerate, got %+v", third)
	}
	if gen.Calls() != 2 {
		t.Errorf("calls = %d, want 2", gen.Calls())
	}
}

func TestSummarize_Unconfigured(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := newCache(clk)
	svc := NewService(nil, c, time.Second)

	s := svc.Summarize(context.Background(), sampleReport())
	if s.Status != model.SummaryUnconfigured || !s.Fallback() || s.Summary == "" {
		t.Errorf("summary = %+v", s)
	}
	if _, ok := c.Get(context.Background(), CacheKey("INV001")); ok {
		t.Error("fallback must not be cached")
	}
}

func TestSummarize_GeneratorFailure(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Now()}
	gen := &stubGenerator{err: errors.New("connection reset")}
	svc := NewService(gen, newCache(clk), time.Second)

	s := svc.Summarize(ctx, sampleReport())
	if s.Status != model.SummaryUnavailable {
		t.Fatalf("status = %s", s.Status)
	}
	if s.Summary != "AI temporarily unavailable: connection reset" {
		t.Errorf("summary = %q", s.Summary)
	}

	svc.Summarize(ctx, sampleReport())
	if gen.Calls() != 2 {
		t.Errorf("failures must not be cached, calls = %d", gen.Calls())
	}
}

func TestSummarize_Timeout(t *testing.T) {
	clk := &clock{t: time.Now()}
	gen := &stubGenerator{text: "late", delay: time.Second}
	svc := NewService(gen, newCache(clk), 20*time.Millisecond)

	start := time.Now()
	s := svc.Summarize(context.Background(), sampleReport())
	if s.Status != model.SummaryUnavailable || !strings.Contains(s.Summary, "deadline exceeded") {
		t.Errorf("summary = %+v", s)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("timeout not enforced")
	}
}

func TestNewDigest(t *testing.T) {
	d := NewDigest(sampleReport())
	want := []string{"HighAMCConcentration:HDFC:45.0", "Axis Midcap"}
	if len(d.Alerts) != len(want) {
		t.Fatalf("alerts = %v", d.Alerts)
	}
	for i := range want {
		if d.Alerts[i] != want[i] {
			t.Errorf("alert[%d] = %q, want %q", i, d.Alerts[i], want[i])
		}
	}
	if d.AUM != 125000 || d.GainLoss != 12.5 || d.Diversification != 52 || d.ChurnRisk != "Low" {
		t.Errorf("digest = %+v", d)
	}

	prompt, err := d.Prompt()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"2 actionable recommendations", `"risk_mismatch": "Risk Mismatch: Equity 85% but profile Low"`} {
		if !strings.Contains(prompt, s) {
			t.Errorf("prompt missing %q", s)
		}
	}

	empty := NewDigest(&model.Report{InvestorID: "X"})
	if empty.Alerts == nil || empty.RiskMismatch != nil {
		t.Errorf("empty digest = %+v", empty)
	}
}
