package metrics

import (
	"fmt"
	"math"
	"time"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// Labels shared by the scored metrics.
const (
	LevelHigh   = "High"
	LevelLow    = "Low"
	LevelNormal = "Normal"
)

// RiskMismatchDetection compares the equity share with the declared risk profile.
func RiskMismatchDetection(inv *model.Investor, th Thresholds) model.RiskMismatch {
	equity := 0.0
	for i := range inv.Holdings {
		if inv.Holdings[i].Category == model.CategoryEquity {
			equity += inv.Holdings[i].CurrentValue.Float()
		}
	}
	share := calculator.Share(equity, holdingsValue(inv.Holdings))

	var alert *string
	switch profile := inv.Profile(); {
	case share > th.EquityCeilingLowRisk && profile == model.RiskLow:
		msg := fmt.Sprintf("Risk Mismatch: Equity %s%% but profile Low", calculator.FormatFloat(share))
		alert = &msg
	case share < th.EquityFloorHighRisk && profile == model.RiskHigh:
		msg := fmt.Sprintf("Risk Mismatch: Equity only %s%% but profile High", calculator.FormatFloat(share))
		alert = &msg
	}
	return model.RiskMismatch{EquityShare: share, Alert: alert}
}

// UnderperformingSchemes lists holdings whose gain/loss is below th.UnderperformingPct.
func UnderperformingSchemes(inv *model.Investor, th Thresholds) []model.SchemeLoss {
	return lossesBelow(inv, th.UnderperformingPct)
}

// UnderperformanceAlerts applies the stricter th.UnderperfAlertPct cutoff.
func UnderperformanceAlerts(inv *model.Investor, th Thresholds) []model.SchemeLoss {
	return lossesBelow(inv, th.UnderperfAlertPct)
}

func lossesBelow(inv *model.Investor, cutoff float64) []model.SchemeLoss {
	out := []model.SchemeLoss{}
	for i := range inv.Holdings {
		h := &inv.Holdings[i]
		if pct := h.GainLossPct.Float(); pct < cutoff {
			out = append(out, model.SchemeLoss{Scheme: h.Scheme(), Loss: calculator.Round2(pct)})
		}
	}
	return out
}

// LiquidityFlagging lists lock-in schemes: ELSS and close-ended funds.
func LiquidityFlagging(inv *model.Investor) model.Liquidity {
	illiquid := []string{}
	for i := range inv.Holdings {
		switch inv.Holdings[i].Category {
		case model.CategoryELSS, model.CategoryCloseEnded:
			illiquid = append(illiquid, inv.Holdings[i].Scheme())
		}
	}
	return model.Liquidity{IlliquidSchemes: illiquid}
}

// RedemptionLikelihoodScore weighs high-gain holdings and inactivity, capped at 1.
func RedemptionLikelihoodScore(inv *model.Investor, th Thresholds) model.RedemptionLikelihood {
	gainers := 0
	for i := range inv.Holdings {
		if inv.Holdings[i].GainLossPct.Float() > th.HighGainerPct {
			gainers++
		}
	}
	inactivity := 0.0
	if th.InactivityHorizon > 0 {
		inactivity = inv.LastActivityDays.Float() / th.InactivityHorizon
	}
	score := math.Min(1, float64(gainers)*th.GainerWeight+inactivity*th.InactivityWeight)

	// The flag reads the unrounded score.
	flag := LevelNormal
	if score > th.RedemptionHighCutoff {
		flag = LevelHigh
	}
	return model.RedemptionLikelihood{Score: calculator.Round2(score), Flag: flag}
}

// ChurnRiskDetection combines a negative overall return with SIP discontinuation risk.
func ChurnRiskDetection(inv *model.Investor, th Thresholds, now time.Time) model.ChurnRisk {
	score := 0.0
	if inv.GainLossPct.Float() < 0 {
		score += th.ChurnNegativeWeight
	}
	if SIPDiscontinuationPrediction(inv, th, now).Risk == LevelHigh {
		score += th.ChurnSIPWeight
	}

	label := LevelLow
	if score >= th.ChurnHighCutoff {
		label = LevelHigh
	}
	return model.ChurnRisk{ChurnRisk: label, Score: calculator.Round2(score)}
}

