package metrics

import (
	"sort"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// grouped sums current value per key, remembering first-appearance order so alert lists are stable.
type grouped struct {
	order  []string
	totals map[string]float64
}

func groupBy(holdings []model.Holding, key func(*model.Holding) string) grouped {
	g := grouped{totals: make(map[string]float64)}
	for i := range holdings {
		h := &holdings[i]
		k := key(h)
		if _, seen := g.totals[k]; !seen {
			g.order = append(g.order, k)
		}
		g.totals[k] += h.CurrentValue.Float()
	}
	return g
}

func (g grouped) sum() float64 {
	total := 0.0
	for _, k := range g.order {
		total += g.totals[k]
	}
	return total
}

func holdingsValue(holdings []model.Holding) float64 {
	total := 0.0
	for i := range holdings {
		total += holdings[i].CurrentValue.Float()
	}
	return total
}

// PerformanceSummary reports the store's pre-aggregated totals rather than recomputing them from holdings.
func PerformanceSummary(inv *model.Investor) model.Performance {
	return model.Performance{
		Invested: calculator.Round2(inv.TotalInvested.Float()),
		Value:    calculator.Round2(inv.TotalAUM.Float()),
		GainLoss: calculator.Round2(inv.GainLossPct.Float()),
	}
}

// AssetAllocation returns each category's share of current value. An empty portfolio has total 1.
func AssetAllocation(inv *model.Investor) model.Allocation {
	g := groupBy(inv.Holdings, (*model.Holding).CategoryName)
	total := calculator.SafeTotal(g.sum())

	alloc := make(map[string]float64, len(g.order))
	for _, k := range g.order {
		alloc[k] = calculator.Share(g.totals[k], total)
	}
	return model.Allocation{Total: total, Allocation: alloc}
}

// FundConcentration flags every AMC whose share of value is strictly above th.AMCConcentration.
func FundConcentration(inv *model.Investor, th Thresholds) model.Concentration {
	g := groupBy(inv.Holdings, (*model.Holding).AMC)
	total := calculator.SafeTotal(g.sum())

	alerts := []model.AMCAlert{}
	for _, amc := range g.order {
		ratio := g.totals[amc] / total
		if ratio > th.AMCConcentration {
			alerts = append(alerts, model.AMCAlert{
				Type: "HighAMCConcentration",
				AMC:  amc,
				Pct:  calculator.Round2(ratio * 100),
			})
		}
	}
	return model.Concentration{Totals: g.totals, Alerts: alerts}
}

// DiversificationScore is a bounded linear heuristic over distinct AMC and category counts.
// It has no statistical meaning beyond "more houses and more categories score higher".
func DiversificationScore(inv *model.Investor, th Thresholds) model.Diversification {
	amcs := groupBy(inv.Holdings, (*model.Holding).AMC)
	cats := groupBy(inv.Holdings, (*model.Holding).CategoryName)

	score := len(amcs.order)*th.DiversificationAMCWeight + len(cats.order)*th.DiversificationCategoryWeight
	if score > th.DiversificationCap {
		score = th.DiversificationCap
	}
	return model.Diversification{
		AMCCount: len(amcs.order),
		CatCount: len(cats.order),
		Score:    score,
	}
}

// CategoryImbalanceAlert flags categories whose rounded share is strictly above th.CategoryOverweight.
func CategoryImbalanceAlert(inv *model.Investor, th Thresholds) model.CategoryImbalance {
	g := groupBy(inv.Holdings, (*model.Holding).CategoryName)
	total := calculator.SafeTotal(g.sum())

	alerts := []model.CategoryAlert{}
	for _, cat := range g.order {
		pct := calculator.Share(g.totals[cat], total)
		if pct > th.CategoryOverweight {
			alerts = append(alerts, model.CategoryAlert{
				Type:     "CategoryOverweight",
				Category: cat,
				Pct:      pct,
			})
		}
	}
	return model.CategoryImbalance{Alerts: alerts}
}

// AUMConcentrationRisk reports the largest th.TopHoldings holdings and their combined share of value.
// Ties keep portfolio order.
func AUMConcentrationRisk(inv *model.Investor, th Thresholds) model.AUMConcentration {
	sorted := make([]model.Holding, len(inv.Holdings))
	copy(sorted, inv.Holdings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CurrentValue > sorted[j].CurrentValue
	})
	if len(sorted) > th.TopHoldings {
		sorted = sorted[:th.TopHoldings]
	}

	top := make([]model.SchemeValue, 0, len(sorted))
	topSum := 0.0
	for i := range sorted {
		v := sorted[i].CurrentValue.Float()
		topSum += v
		top = append(top, model.SchemeValue{Scheme: sorted[i].Scheme(), Value: v})
	}

	total := calculator.SafeTotal(holdingsValue(inv.Holdings))
	return model.AUMConcentration{
		Top3:          top,
		Concentration: calculator.Share(topSum, total),
	}
}
