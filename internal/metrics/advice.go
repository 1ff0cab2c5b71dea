package metrics

import (
	"fmt"
	"math"

	"PortfolioPulse/internal/model"
)

const (
	adviceGoalRebalancing = "Map long-term goals to equity heavy funds and short-term to debt; rebalance annually."
	adviceSummary         = "Continue SIP discipline and review top losing funds."
	advicePerformingWell  = "Portfolio is performing well. Continue monitoring and rebalance annually."
)

// RebalancingRecommendations suggests allocation changes from the category breakdown.
func RebalancingRecommendations(inv *model.Investor, th Thresholds) model.Suggestions {
	alloc := AssetAllocation(inv).Allocation
	out := []string{}
	if alloc[model.CategoryEquity] > th.RebalanceEquityPct {
		out = append(out, "Reduce equity exposure by 10-15%")
	}
	if alloc[model.CategoryDebt] < th.RebalanceDebtPct {
		out = append(out, "Increase debt allocation for stability")
	}
	if len(alloc) < th.MinAssetClasses {
		out = append(out, "Add more asset classes for better diversification")
	}
	return model.Suggestions{Suggestions: out}
}

// PerformanceImprovementSuggestions proposes a replacement for every underperforming scheme.
func PerformanceImprovementSuggestions(inv *model.Investor, th Thresholds) model.Suggestions {
	under := UnderperformingSchemes(inv, th)
	out := make([]string, 0, len(under))
	for _, s := range under {
		out = append(out, fmt.Sprintf("Consider replacing %s with better performing same-category funds", s.Scheme))
	}
	if len(out) == 0 {
		out = append(out, advicePerformingWell)
	}
	return model.Suggestions{Suggestions: out}
}

// GoalRebalancingAdvice is static guidance.
func GoalRebalancingAdvice() model.Advice {
	return model.Advice{Advice: adviceGoalRebalancing}
}

// PortfolioSummary is the deterministic one-line summary shown alongside the generated narrative.
// The score falls one point per percent of gain or loss away from zero.
func PortfolioSummary(inv *model.Investor) model.AISummary {
	perf := PerformanceSummary(inv)
	score := math.Max(0, 100-math.Abs(perf.GainLoss))
	return model.AISummary{
		PortfolioScore: int(math.Round(score)),
		Summary: fmt.Sprintf("Investor %s holds %d schemes with %.2f%% gain/loss.",
			inv.DisplayName(), len(inv.Holdings), perf.GainLoss),
		Recommendation: adviceSummary,
	}
}
