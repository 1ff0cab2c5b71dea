package model

import (
	"encoding/json"
	"time"
)

// Report is the composed output of every metric for one investor.
// A fresh Report is built on every evaluation and never mutated afterwards.
type Report struct {
	InvestorID                 string               `json:"investor_id"`
	Name                       string               `json:"name"`
	GeneratedAt                time.Time            `json:"generated_at"`
	Performance                Performance          `json:"performance"`
	Allocation                 Allocation           `json:"allocation"`
	Concentration              Concentration        `json:"concentration"`
	Underperforming            []SchemeLoss         `json:"underperforming"`
	SIPHealth                  SIPHealth            `json:"sip_health"`
	Diversification            Diversification      `json:"diversification"`
	RiskMismatch               RiskMismatch         `json:"risk_mismatch"`
	CategoryImbalance          CategoryImbalance    `json:"category_imbalance"`
	AUMConcentration           AUMConcentration     `json:"aum_concentration"`
	UnderperformanceAlerts     []SchemeLoss         `json:"underperf_alert"`
	Liquidity                  Liquidity            `json:"liquidity"`
	SIPDiscontinuation         SIPDiscontinuation   `json:"sip_discontinuation"`
	RedemptionLikelihood       RedemptionLikelihood `json:"redemption_likelihood"`
	GrowthForecast             GrowthForecast       `json:"aum_forecast"`
	ChurnRisk                  ChurnRisk            `json:"churn_risk"`
	GoalForecast               GoalForecast         `json:"goal_forecast"`
	RebalancingRecommendations Suggestions          `json:"rebalancing_recommendations"`
	PerformanceSuggestions     Suggestions          `json:"performance_suggestions"`
	GoalRebalancingAdvice      Advice               `json:"goal_rebalancing_advice"`
	AISummary                  AISummary            `json:"ai_summary"`

	// Errors maps a metric name to the failure that prevented it from being computed.
	Errors map[string]string `json:"errors,omitempty"`
}

type Performance struct {
	Invested float64 `json:"invested"`
	Value    float64 `json:"value"`
	GainLoss float64 `json:"gainLoss"`
}

type Allocation struct {
	Total      float64            `json:"total"`
	Allocation map[string]float64 `json:"allocation"`
}

type AMCAlert struct {
	Type string  `json:"type"`
	AMC  string  `json:"amc"`
	Pct  float64 `json:"pct"`
}

type Concentration struct {
	Totals map[string]float64 `json:"totals"`
	Alerts []AMCAlert         `json:"alerts"`
}

type SchemeLoss struct {
	Scheme string  `json:"scheme"`
	Loss   float64 `json:"loss"`
}

type SIPDetail struct {
	Scheme  string `json:"scheme"`
	Freq    string `json:"freq"`
	NextDue string `json:"next_due"`
}

type SIPHealth struct {
	Active  int         `json:"active"`
	Details []SIPDetail `json:"details"`
}

// Diversification is a bounded linear heuristic over AMC and category counts.
type Diversification struct {
	AMCCount int `json:"amcCount"`
	CatCount int `json:"catCount"`
	Score    int `json:"diversificationScore"`
}

type RiskMismatch struct {
	EquityShare float64 `json:"equityShare"`
	Alert       *string `json:"alert"`
}

type CategoryAlert struct {
	Type     string  `json:"type"`
	Category string  `json:"category"`
	Pct      float64 `json:"pct"`
}

type CategoryImbalance struct {
	Alerts []CategoryAlert `json:"alerts"`
}

type SchemeValue struct {
	Scheme string  `json:"scheme"`
	Value  float64 `json:"value"`
}

type AUMConcentration struct {
	Top3          []SchemeValue `json:"top3"`
	Concentration float64       `json:"concentration"`
}

type Liquidity struct {
	IlliquidSchemes []string `json:"illiquidSchemes"`
}

type SIPDiscontinuation struct {
	SIPCount    int    `json:"sipCount"`
	MissedCount int    `json:"missedCount"`
	Risk        string `json:"risk"`
}

type RedemptionLikelihood struct {
	Score float64 `json:"score"`
	Flag  string  `json:"flag"`
}

type GrowthForecast struct {
	ProjectedGrowthPct float64 `json:"projectedGrowthPct"`
	Method             string  `json:"method"`
}

type ChurnRisk struct {
	ChurnRisk string  `json:"churnRisk"`
	Score     float64 `json:"score"`
}

// Goal forecast statuses.
const (
	GoalProjected          = "Projected"
	GoalNoGoalDeclared     = "NoGoalDeclared"
	GoalNoTimelineDeclared = "NoTimelineDeclared"
	GoalInvalidTimeline    = "InvalidTimeline"
)

// GoalForecast carries a numeric projection only when Status is GoalProjected.
type GoalForecast struct {
	Status        string  `json:"status"`
	Target        float64 `json:"target"`
	MonthsLeft    int     `json:"monthsLeft"`
	NeededMonthly float64 `json:"neededMonthly"`
}

// MarshalJSON drops the numeric fields for declared-incomplete goals.
func (g GoalForecast) MarshalJSON() ([]byte, error) {
	if g.Status != GoalProjected {
		return json.Marshal(struct {
			Status string `json:"status"`
		}{g.Status})
	}
	type alias GoalForecast
	return json.Marshal(alias(g))
}

type Suggestions struct {
	Suggestions []string `json:"suggestions"`
}

type Advice struct {
	Advice string `json:"advice"`
}

type AISummary struct {
	PortfolioScore int    `json:"portfolioScore"`
	Summary        string `json:"summary"`
	Recommendation string `json:"recommendation"`
}
