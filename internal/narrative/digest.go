package narrative

import (
	"encoding/json"
	"fmt"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

const systemPrompt = "You are a financial advisor for mutual fund distributors."

const promptTemplate = `You are an AI financial assistant for mutual fund distributors. Given this compact JSON, produce:
1) A 2-3 line plain English summary of portfolio health
2) 2 actionable recommendations for the distributor to suggest to the client

JSON:
%s

Provide concise, professional advice focused on risk management and growth.`

// Digest is the compact, numbers-only view of a Report sent to the generator.
type Digest struct {
	InvestorID      string   `json:"investor_id"`
	AUM             float64  `json:"aum"`
	GainLoss        float64  `json:"gain_loss"`
	Alerts          []string `json:"alerts"`
	Diversification int      `json:"diversification"`
	RiskMismatch    *string  `json:"risk_mismatch"`
	ChurnRisk       string   `json:"churn_risk"`
}

// NewDigest extracts the digest fields. AMC alerts are encoded as type:amc:pct, followed by the
// names of schemes below the underperformance alert cutoff.
func NewDigest(r *model.Report) Digest {
	d := Digest{
		InvestorID:      r.InvestorID,
		AUM:             r.Performance.Value,
		GainLoss:        r.Performance.GainLoss,
		Alerts:          []string{},
		Diversification: r.Diversification.Score,
		RiskMismatch:    r.RiskMismatch.Alert,
		ChurnRisk:       r.ChurnRisk.ChurnRisk,
	}
	for _, a := range r.Concentration.Alerts {
		d.Alerts = append(d.Alerts, fmt.Sprintf("%s:%s:%s", a.Type, a.AMC, calculator.FormatFloat(a.Pct)))
	}
	for _, a := range r.UnderperformanceAlerts {
		d.Alerts = append(d.Alerts, a.Scheme)
	}
	return d
}

// Prompt renders the instruction template around the indented digest.
func (d Digest) Prompt() (string, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal digest: %w", err)
	}
	return fmt.Sprintf(promptTemplate, data), nil
}
