package metrics

// Thresholds collects every cutoff and weight used by the metrics.
type Thresholds struct {
	AMCConcentration     float64 // share of AUM (0-1) above which an AMC alerts
	CategoryOverweight   float64 // category pct above which it alerts
	EquityCeilingLowRisk float64 // equity pct above which a Low profile mismatches
	EquityFloorHighRisk  float64 // equity pct below which a High profile mismatches
	UnderperformingPct   float64 // holding gain/loss pct below which it is underperforming
	UnderperfAlertPct    float64 // stricter cutoff for underperformance alerts
	MissedSIPDays        int     // days past next_due_date after which a SIP is missed

	HighGainerPct        float64 // holding gain pct above which it counts as a high gainer
	GainerWeight         float64
	InactivityWeight     float64
	InactivityHorizon    float64 // days that normalise inactivity to 1
	RedemptionHighCutoff float64

	ChurnNegativeWeight float64
	ChurnSIPWeight      float64
	ChurnHighCutoff     float64

	RebalanceEquityPct float64
	RebalanceDebtPct   float64
	MinAssetClasses    int

	DiversificationAMCWeight      int
	DiversificationCategoryWeight int
	DiversificationCap            int

	TopHoldings    int
	DaysPerMonth   float64
	ForecastMinPct float64
	ForecastMaxPct float64
	ForecastMonths int
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		AMCConcentration:     0.40,
		CategoryOverweight:   70,
		EquityCeilingLowRisk: 70,
		EquityFloorHighRisk:  30,
		UnderperformingPct:   0,
		UnderperfAlertPct:    -3,
		MissedSIPDays:        60,

		HighGainerPct:        15,
		GainerWeight:         0.2,
		InactivityWeight:     0.3,
		InactivityHorizon:    365,
		RedemptionHighCutoff: 0.7,

		ChurnNegativeWeight: 0.6,
		ChurnSIPWeight:      0.4,
		ChurnHighCutoff:     0.6,

		RebalanceEquityPct: 70,
		RebalanceDebtPct:   20,
		MinAssetClasses:    3,

		DiversificationAMCWeight:      12,
		DiversificationCategoryWeight: 8,
		DiversificationCap:            100,

		TopHoldings:    3,
		DaysPerMonth:   30,
		ForecastMinPct: -2,
		ForecastMaxPct: 10,
		ForecastMonths: 6,
	}
}
