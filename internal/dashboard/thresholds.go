package dashboard

// Thresholds holds the windows and cohort cutoffs used by Build.
type Thresholds struct {
	MonthlyActiveDays   int // Monthly SIP paid within this many days is active
	QuarterlyActiveDays int // Quarterly SIP paid within this many days is active
	PausedDays          int // either frequency paid within this many days is paused, else stopped

	ExpiryWindowDays int // upcoming expiry covers next_due_date in [0, ExpiryWindowDays]
	InflowMonths     int // length of the monthly inflow series

	HighPotentialMinDays  int // onboarded strictly more than this many days ago
	HighPotentialMaxSells int // at most this many Sell transactions across all holdings

	TopN int // length of every ranked list
}

// DefaultThresholds returns the production windows.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MonthlyActiveDays:   35,
		QuarterlyActiveDays: 100,
		PausedDays:          180,

		ExpiryWindowDays: 90,
		InflowMonths:     12,

		HighPotentialMinDays:  180,
		HighPotentialMaxSells: 2,

		TopN: 10,
	}
}

// performanceBands are the upper bounds (exclusive) of the gain/loss histogram; the last band is open.
var performanceBands = []struct {
	name  string
	upper float64
}{
	{"Negative", 0},
	{"0-5%", 5},
	{"5-10%", 10},
	{"10-15%", 15},
}

const openBand = "15%+"
