package model

import (
	"encoding/json"

	"PortfolioPulse/internal/calculator"
)

// Risk profiles.
const (
	RiskLow      = "Low"
	RiskModerate = "Moderate"
	RiskHigh     = "High"
)

// Fund categories referenced by the metrics. The set is open-ended.
const (
	CategoryEquity     = "Equity"
	CategoryDebt       = "Debt"
	CategoryELSS       = "ELSS"
	CategoryCloseEnded = "Close Ended"
)

// SIP frequencies.
const (
	FreqMonthly   = "Monthly"
	FreqQuarterly = "Quarterly"
)

// Transaction types.
const (
	TxnBuy      = "Buy"
	TxnSell     = "Sell"
	TxnSwitch   = "Switch"
	TxnDividend = "Dividend"
	TxnSIP      = "SIP"
)

// Unknown labels a holding with no AMC, category or scheme name.
const Unknown = "Unknown"

// Num is a float64 that decodes from any JSON value. Numbers and numeric strings are read as-is;
// anything else (null, text, objects) becomes 0.
type Num float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Num) UnmarshalJSON(b []byte) error {
	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		*n = 0
		return nil
	}
	*n = Num(calculator.ToFloat(raw))
	return nil
}

// Float returns n as a float64.
func (n Num) Float() float64 { return float64(n) }

// Investor is one client document as owned by the document store.
// TotalInvested, TotalAUM and GainLossPct are pre-aggregated by the store and trusted as-is.
type Investor struct {
	InvestorID       string    `json:"investor_id"`
	Name             string    `json:"name"`
	PAN              string    `json:"pan,omitempty"`
	Email            string    `json:"email,omitempty"`
	Mobile           string    `json:"mobile,omitempty"`
	RiskProfile      string    `json:"risk_profile"`
	InvestorType     string    `json:"investor_type,omitempty"`
	OnboardingDate   string    `json:"onboarding_date"`
	TotalInvested    Num       `json:"total_invested"`
	TotalAUM         Num       `json:"total_aum"`
	GainLossPct      Num       `json:"gain_loss_pct"`
	LastActivityDays Num       `json:"last_activity_days,omitempty"`
	GoalTargetCorpus Num       `json:"goal_target_corpus,omitempty"`
	GoalTimeline     string    `json:"goal_timeline,omitempty"`
	Holdings         []Holding `json:"portfolios"`
}

// DisplayName falls back to the investor ID when no name is recorded.
func (inv *Investor) DisplayName() string {
	if inv.Name != "" {
		return inv.Name
	}
	return inv.InvestorID
}

// Profile returns the risk profile, defaulting to Moderate.
func (inv *Investor) Profile() string {
	if inv.RiskProfile == "" {
		return RiskModerate
	}
	return inv.RiskProfile
}

// Holding is one fund position (folio) of an investor.
type Holding struct {
	FolioID            string        `json:"folio_id,omitempty"`
	AMCName            string        `json:"amc_name"`
	Category           string        `json:"category"`
	SchemeName         string        `json:"scheme_name"`
	CurrentValue       Num           `json:"current_value"`
	InvestedAmount     Num           `json:"invested_amount"`
	GainLossPct        Num           `json:"gain_loss_pct"`
	SIPFlag            bool          `json:"sip_flag"`
	SIPFreq            string        `json:"sip_freq,omitempty"`
	LastSIPPaymentDate string        `json:"last_sip_payment_date,omitempty"`
	NextDueDate        string        `json:"next_due_date,omitempty"`
	Transactions       []Transaction `json:"transactions"`
}

// AMC returns the fund house name or Unknown.
func (h *Holding) AMC() string { return orUnknown(h.AMCName) }

// CategoryName returns the category or Unknown.
func (h *Holding) CategoryName() string { return orUnknown(h.Category) }

// Scheme returns the scheme name or Unknown.
func (h *Holding) Scheme() string { return orUnknown(h.SchemeName) }

// Frequency returns the SIP frequency, defaulting to Monthly.
func (h *Holding) Frequency() string {
	if h.SIPFreq == "" {
		return FreqMonthly
	}
	return h.SIPFreq
}

// Transaction is a single folio transaction.
type Transaction struct {
	TxnID     string `json:"txn_id,omitempty"`
	TxnType   string `json:"txn_type"`
	TxnDate   string `json:"txn_date"`
	TxnAmount Num    `json:"txn_amount"`
	NAVAtTxn  Num    `json:"nav_at_txn"`
	Units     Num    `json:"units"`
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
