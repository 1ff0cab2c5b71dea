package model

import (
	"encoding/json"
	"time"
)

// DashboardReport is the population-wide rollup. It is recomputed from scratch on every request.
type DashboardReport struct {
	NeedsSeeding bool      `json:"needsSeeding"`
	GeneratedAt  time.Time `json:"generated_at"`

	TotalInvestors          int            `json:"total_investors"`
	TotalAUM                float64        `json:"total_aum"`
	TotalInvested           float64        `json:"total_invested"`
	AverageGainLossPct      float64        `json:"average_gain_loss_pct"`
	RiskDistribution        map[string]int `json:"risk_distribution"`
	PerformanceDistribution []Bucket       `json:"performance_distribution"`

	SIPStatus              SIPStatus               `json:"sip_status"`
	UpcomingSIPExpiry      []UpcomingSIP           `json:"upcoming_sip_expiry"`
	MonthlySIPInflow       []MonthlyInflow         `json:"monthly_sip_inflow"`
	AverageSIPTicketSize   float64                 `json:"average_sip_ticket_size"`
	TopSIPInvestors        []SIPInvestor           `json:"top_sip_investors"`
	ProfitLossSplit        ProfitLossSplit         `json:"profit_loss_split"`
	HighPotentialInvestors []HighPotentialInvestor `json:"high_potential_investors"`
}

// MarshalJSON emits only the seeding state when there is no population to aggregate.
func (d DashboardReport) MarshalJSON() ([]byte, error) {
	if d.NeedsSeeding {
		return json.Marshal(struct {
			NeedsSeeding bool      `json:"needsSeeding"`
			GeneratedAt  time.Time `json:"generated_at"`
		}{true, d.GeneratedAt})
	}
	type alias DashboardReport
	return json.Marshal(alias(d))
}

type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type SIPStatus struct {
	Active  int `json:"active"`
	Paused  int `json:"paused"`
	Stopped int `json:"stopped"`
}

type UpcomingSIP struct {
	InvestorID   string `json:"investor_id"`
	InvestorName string `json:"investor_name"`
	SchemeName   string `json:"scheme_name"`
	NextDueDate  string `json:"next_due_date"`
	DaysUntilDue int    `json:"days_until_due"`
}

// MonthlyInflow is one point of the trailing inflow series. Key is YYYY-MM, Month is "Jan 2006".
type MonthlyInflow struct {
	Key    string  `json:"key"`
	Month  string  `json:"month"`
	Inflow float64 `json:"inflow"`
}

type SIPInvestor struct {
	InvestorID    string  `json:"investor_id"`
	InvestorName  string  `json:"investor_name"`
	TotalSIPValue float64 `json:"total_sip_value"`
	SIPCount      int     `json:"sip_count"`
}

type ProfitLossSplit struct {
	Profit int `json:"profit"`
	Loss   int `json:"loss"`
}

type HighPotentialInvestor struct {
	InvestorID     string  `json:"investor_id"`
	InvestorName   string  `json:"investor_name"`
	GainLossPct    float64 `json:"gain_loss_pct"`
	Redemptions    int     `json:"redemptions"`
	OnboardingDays int     `json:"onboarding_days"`
	TotalAUM       float64 `json:"total_aum"`
}
