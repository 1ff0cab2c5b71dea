package metrics

import (
	"fmt"
	"log"
	"time"

	"PortfolioPulse/internal/model"
)

// Report keys, one per metric.
const (
	MetricPerformance           = "performance"
	MetricAllocation            = "allocation"
	MetricConcentration         = "concentration"
	MetricUnderperforming       = "underperforming"
	MetricSIPHealth             = "sip_health"
	MetricDiversification       = "diversification"
	MetricRiskMismatch          = "risk_mismatch"
	MetricCategoryImbalance     = "category_imbalance"
	MetricAUMConcentration      = "aum_concentration"
	MetricUnderperfAlert        = "underperf_alert"
	MetricLiquidity             = "liquidity"
	MetricSIPDiscontinuation    = "sip_discontinuation"
	MetricRedemptionLikelihood  = "redemption_likelihood"
	MetricGrowthForecast        = "aum_forecast"
	MetricChurnRisk             = "churn_risk"
	MetricGoalForecast          = "goal_forecast"
	MetricRebalancing           = "rebalancing_recommendations"
	MetricPerformanceSuggestion = "performance_suggestions"
	MetricGoalRebalancing       = "goal_rebalancing_advice"
	MetricAISummary             = "ai_summary"
)

// Engine evaluates the fixed metric set against one investor.
type Engine struct {
	Thresholds Thresholds
	Forecaster Forecaster
	Now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithThresholds replaces the default cutoffs.
func WithThresholds(th Thresholds) Option {
	return func(e *Engine) { e.Thresholds = th }
}

// WithForecaster replaces the default trailing-trend forecaster.
func WithForecaster(f Forecaster) Option {
	return func(e *Engine) { e.Forecaster = f }
}

// WithClock fixes the reference time used by date-dependent metrics.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.Now = now }
}

// NewEngine creates an Engine with default thresholds, the trend forecaster and the wall clock.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		Thresholds: DefaultThresholds(),
		Now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.Forecaster == nil {
		e.Forecaster = NewTrendForecaster(e.Thresholds)
	}
	return e
}

// Evaluate computes every metric for inv and composes them into a fresh Report.
// A metric that fails is recorded in Report.Errors and keeps its zero value; the others still run.
func (e *Engine) Evaluate(inv *model.Investor) *model.Report {
	now := e.Now()
	th := e.Thresholds

	r := &model.Report{
		InvestorID:  inv.InvestorID,
		Name:        inv.Name,
		GeneratedAt: now,
	}

	steps := []struct {
		name string
		run  func()
	}{
		{MetricPerformance, func() { r.Performance = PerformanceSummary(inv) }},
		{MetricAllocation, func() { r.Allocation = AssetAllocation(inv) }},
		{MetricConcentration, func() { r.Concentration = FundConcentration(inv, th) }},
		{MetricUnderperforming, func() { r.Underperforming = UnderperformingSchemes(inv, th) }},
		{MetricSIPHealth, func() { r.SIPHealth = SIPHealthTracking(inv) }},
		{MetricDiversification, func() { r.Diversification = DiversificationScore(inv, th) }},
		{MetricRiskMismatch, func() { r.RiskMismatch = RiskMismatchDetection(inv, th) }},
		{MetricCategoryImbalance, func() { r.CategoryImbalance = CategoryImbalanceAlert(inv, th) }},
		{MetricAUMConcentration, func() { r.AUMConcentration = AUMConcentrationRisk(inv, th) }},
		{MetricUnderperfAlert, func() { r.UnderperformanceAlerts = UnderperformanceAlerts(inv, th) }},
		{MetricLiquidity, func() { r.Liquidity = LiquidityFlagging(inv) }},
		{MetricSIPDiscontinuation, func() { r.SIPDiscontinuation = SIPDiscontinuationPrediction(inv, th, now) }},
		{MetricRedemptionLikelihood, func() { r.RedemptionLikelihood = RedemptionLikelihoodScore(inv, th) }},
		{MetricGrowthForecast, func() { r.GrowthForecast = e.Forecaster.Forecast(inv, now) }},
		{MetricChurnRisk, func() { r.ChurnRisk = ChurnRiskDetection(inv, th, now) }},
		{MetricGoalForecast, func() { r.GoalForecast = GoalAchievementForecast(inv, th, now) }},
		{MetricRebalancing, func() { r.RebalancingRecommendations = RebalancingRecommendations(inv, th) }},
		{MetricPerformanceSuggestion, func() { r.PerformanceSuggestions = PerformanceImprovementSuggestions(inv, th) }},
		{MetricGoalRebalancing, func() { r.GoalRebalancingAdvice = GoalRebalancingAdvice() }},
		{MetricAISummary, func() { r.AISummary = PortfolioSummary(inv) }},
	}

	for _, s := range steps {
		if err := guard(s.run); err != nil {
			log.Printf("[ERROR] metric %s failed for investor %s: %v", s.name, inv.InvestorID, err)
			if r.Errors == nil {
				r.Errors = make(map[string]string)
			}
			r.Errors[s.name] = err.Error()
		}
	}
	return r
}

// MetricNames lists the report keys in evaluation order.
func MetricNames() []string {
	return []string{
		MetricPerformance, MetricAllocation, MetricConcentration, MetricUnderperforming,
		MetricSIPHealth, MetricDiversification, MetricRiskMismatch, MetricCategoryImbalance,
		MetricAUMConcentration, MetricUnderperfAlert, MetricLiquidity, MetricSIPDiscontinuation,
		MetricRedemptionLikelihood, MetricGrowthForecast, MetricChurnRisk, MetricGoalForecast,
		MetricRebalancing, MetricPerformanceSuggestion, MetricGoalRebalancing, MetricAISummary,
	}
}

func guard(fn func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	fn()
	return nil
}
