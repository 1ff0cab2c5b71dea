package dashboard

import (
	"sort"
	"time"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// SIP states.
const (
	SIPActive  = "active"
	SIPPaused  = "paused"
	SIPStopped = "stopped"
)

// Builder aggregates an investor population into a DashboardReport.
type Builder struct {
	Thresholds Thresholds
}

// NewBuilder returns a Builder with the default thresholds.
func NewBuilder() *Builder {
	return &Builder{Thresholds: DefaultThresholds()}
}

// Build computes the dashboard from the full population in one pass over holdings.
// Items with unparseable dates are left out of date-dependent figures only.
func (b *Builder) Build(investors []model.Investor, now time.Time) model.DashboardReport {
	th := b.Thresholds
	report := model.DashboardReport{GeneratedAt: now}
	if len(investors) == 0 {
		report.NeedsSeeding = true
		return report
	}

	months := calculator.TrailingMonths(now, th.InflowMonths)
	inflow := make([]model.MonthlyInflow, len(months))
	monthIndex := make(map[string]int, len(months))
	for i, m := range months {
		key := calculator.MonthKey(m)
		inflow[i] = model.MonthlyInflow{Key: key, Month: calculator.MonthLabel(m)}
		monthIndex[key] = i
	}

	report.RiskDistribution = make(map[string]int)
	bands := make([]int, len(performanceBands)+1)
	upcoming := []model.UpcomingSIP{}
	sipInvestors := []model.SIPInvestor{}
	highPotential := []model.HighPotentialInvestor{}
	gainSum := 0.0
	ticketSum, ticketCount := 0.0, 0

	for i := range investors {
		inv := &investors[i]
		gain := inv.GainLossPct.Float()

		report.TotalAUM += inv.TotalAUM.Float()
		report.TotalInvested += inv.TotalInvested.Float()
		report.RiskDistribution[inv.Profile()]++
		bands[band(gain)]++
		gainSum += gain
		if gain >= 0 {
			report.ProfitLossSplit.Profit++
		} else {
			report.ProfitLossSplit.Loss++
		}

		sells := 0
		sipValue, sipCount := 0.0, 0
		for j := range inv.Holdings {
			h := &inv.Holdings[j]
			for _, txn := range h.Transactions {
				switch txn.TxnType {
				case model.TxnSell:
					sells++
				case model.TxnSIP:
					d, err := calculator.ParseDate(txn.TxnDate)
					if err != nil {
						continue
					}
					if idx, ok := monthIndex[calculator.MonthKey(d)]; ok {
						inflow[idx].Inflow += txn.TxnAmount.Float()
					}
				}
			}
			if !h.SIPFlag {
				continue
			}

			value := h.CurrentValue.Float()
			sipValue += value
			sipCount++
			ticketSum += value
			ticketCount++

			switch b.sipState(h, now) {
			case SIPActive:
				report.SIPStatus.Active++
			case SIPPaused:
				report.SIPStatus.Paused++
			default:
				report.SIPStatus.Stopped++
			}

			if due, err := calculator.ParseDate(h.NextDueDate); err == nil {
				days := calculator.DaysBetween(now, due)
				if days >= 0 && days <= th.ExpiryWindowDays {
					upcoming = append(upcoming, model.UpcomingSIP{
						InvestorID:   inv.InvestorID,
						InvestorName: inv.DisplayName(),
						SchemeName:   h.Scheme(),
						NextDueDate:  h.NextDueDate,
						DaysUntilDue: days,
					})
				}
			}
		}

		if sipCount > 0 {
			sipInvestors = append(sipInvestors, model.SIPInvestor{
				InvestorID:    inv.InvestorID,
				InvestorName:  inv.DisplayName(),
				TotalSIPValue: calculator.Round2(sipValue),
				SIPCount:      sipCount,
			})
		}

		if gain > 0 && sells <= th.HighPotentialMaxSells {
			onboarded, err := calculator.ParseDate(inv.OnboardingDate)
			if err == nil {
				if days := calculator.DaysBetween(onboarded, now); days > th.HighPotentialMinDays {
					highPotential = append(highPotential, model.HighPotentialInvestor{
						InvestorID:     inv.InvestorID,
						InvestorName:   inv.DisplayName(),
						GainLossPct:    calculator.Round2(gain),
						Redemptions:    sells,
						OnboardingDays: days,
						TotalAUM:       calculator.Round2(inv.TotalAUM.Float()),
					})
				}
			}
		}
	}

	for i := range inflow {
		inflow[i].Inflow = calculator.Round2(inflow[i].Inflow)
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].DaysUntilDue < upcoming[j].DaysUntilDue })
	sort.SliceStable(sipInvestors, func(i, j int) bool { return sipInvestors[i].TotalSIPValue > sipInvestors[j].TotalSIPValue })
	sort.SliceStable(highPotential, func(i, j int) bool { return highPotential[i].GainLossPct > highPotential[j].GainLossPct })

	report.TotalInvestors = len(investors)
	report.TotalAUM = calculator.Round2(report.TotalAUM)
	report.TotalInvested = calculator.Round2(report.TotalInvested)
	report.AverageGainLossPct = calculator.Round2(gainSum / float64(len(investors)))
	report.PerformanceDistribution = make([]model.Bucket, 0, len(bands))
	for i, pb := range performanceBands {
		report.PerformanceDistribution = append(report.PerformanceDistribution, model.Bucket{Name: pb.name, Value: bands[i]})
	}
	report.PerformanceDistribution = append(report.PerformanceDistribution, model.Bucket{Name: openBand, Value: bands[len(performanceBands)]})

	report.UpcomingSIPExpiry = top(upcoming, th.TopN)
	report.MonthlySIPInflow = inflow
	if ticketCount > 0 {
		report.AverageSIPTicketSize = calculator.Round2(ticketSum / float64(ticketCount))
	}
	report.TopSIPInvestors = top(sipInvestors, th.TopN)
	report.HighPotentialInvestors = top(highPotential, th.TopN)
	return report
}

// sipState classifies a SIP holding by days since its last payment. A missing or unparseable
// payment date counts as stopped.
func (b *Builder) sipState(h *model.Holding, now time.Time) string {
	paid, err := calculator.ParseDate(h.LastSIPPaymentDate)
	if err != nil {
		return SIPStopped
	}
	days := calculator.DaysBetween(paid, now)

	activeWithin := b.Thresholds.MonthlyActiveDays
	if h.Frequency() == model.FreqQuarterly {
		activeWithin = b.Thresholds.QuarterlyActiveDays
	}
	switch {
	case days <= activeWithin:
		return SIPActive
	case days <= b.Thresholds.PausedDays:
		return SIPPaused
	default:
		return SIPStopped
	}
}

func band(gain float64) int {
	for i, pb := range performanceBands {
		if gain < pb.upper {
			return i
		}
	}
	return len(performanceBands)
}

func top[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
