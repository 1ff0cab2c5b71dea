package metrics

import (
	"time"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// SIPHealthTracking lists the investor's SIP holdings.
func SIPHealthTracking(inv *model.Investor) model.SIPHealth {
	details := []model.SIPDetail{}
	for i := range inv.Holdings {
		h := &inv.Holdings[i]
		if !h.SIPFlag {
			continue
		}
		details = append(details, model.SIPDetail{
			Scheme:  h.Scheme(),
			Freq:    h.Frequency(),
			NextDue: h.NextDueDate,
		})
	}
	return model.SIPHealth{Active: len(details), Details: details}
}

// SIPDiscontinuationPrediction counts SIPs more than th.MissedSIPDays past their due date.
// Any missed SIP makes the risk High. Unparseable due dates are ignored.
func SIPDiscontinuationPrediction(inv *model.Investor, th Thresholds, now time.Time) model.SIPDiscontinuation {
	sips, missed := 0, 0
	for i := range inv.Holdings {
		h := &inv.Holdings[i]
		if !h.SIPFlag {
			continue
		}
		sips++
		if h.NextDueDate == "" {
			continue
		}
		due, err := calculator.ParseDate(h.NextDueDate)
		if err != nil {
			continue
		}
		if calculator.DaysBetween(due, now) > th.MissedSIPDays {
			missed++
		}
	}

	risk := LevelLow
	if missed > 0 {
		risk = LevelHigh
	}
	return model.SIPDiscontinuation{SIPCount: sips, MissedCount: missed, Risk: risk}
}
