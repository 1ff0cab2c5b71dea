package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"PortfolioPulse/internal/model"
	"PortfolioPulse/internal/recorder"
)

// Caps on the investors named in a bulk digest. Telegram rejects messages over 4096 characters.
const (
	maxListedFailures = 5
	maxListedChurn    = 10
)

// FormatBulkDigest formats the outcome of a bulk run into a Telegram message.
func FormatBulkDigest(res *model.BulkResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>PortfolioPulse bulk run</b> | %s\n\n", res.StartedAt.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Investors: %d\n", res.Count))
	b.WriteString(fmt.Sprintf("Succeeded: %d | Failed: %d\n", res.Succeeded, res.Failed))
	b.WriteString(fmt.Sprintf("Duration: %s\n", res.FinishedAt.Sub(res.StartedAt).Round(time.Second)))

	// Failures
	if res.Failed > 0 {
		b.WriteString("\n⚠️ <b>Failures:</b>\n")
		listed := 0
		for _, item := range res.Items {
			if item.Status != model.BulkError {
				continue
			}
			if listed == maxListedFailures {
				b.WriteString(fmt.Sprintf("  … and %d more\n", res.Failed-listed))
				break
			}
			id := item.InvestorID
			if id == "" {
				id = "(no id)"
			}
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(id), html.EscapeString(item.Error)))
			listed++
		}
	}

	// Churn watchlist
	var highChurn []string
	total := 0
	for _, item := range res.Items {
		if item.Analysis == nil || item.Analysis.ChurnRisk.ChurnRisk != "High" {
			continue
		}
		total++
		if len(highChurn) < maxListedChurn {
			highChurn = append(highChurn, html.EscapeString(displayName(item)))
		}
	}
	if total > 0 {
		b.WriteString(fmt.Sprintf("\n🚨 High churn risk (%d): %s", total, strings.Join(highChurn, ", ")))
		if more := total - len(highChurn); more > 0 {
			b.WriteString(fmt.Sprintf(" … and %d more", more))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func displayName(item model.BulkItem) string {
	if item.Analysis.Name != "" {
		return item.Analysis.Name
	}
	return item.InvestorID
}

// FormatDashboard formats the population rollup.
func FormatDashboard(d *model.DashboardReport) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>Portfolio dashboard</b> | %s\n\n", d.GeneratedAt.Format("2006-01-02")))
	if d.NeedsSeeding {
		b.WriteString("No investors loaded yet.")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Investors: %d\n", d.TotalInvestors))
	b.WriteString(fmt.Sprintf("AUM: ₹%.0f (invested ₹%.0f)\n", d.TotalAUM, d.TotalInvested))
	b.WriteString(fmt.Sprintf("Average gain/loss: %+.2f%%\n", d.AverageGainLossPct))
	b.WriteString(fmt.Sprintf("Profit/Loss: %d / %d\n", d.ProfitLossSplit.Profit, d.ProfitLossSplit.Loss))
	b.WriteString(fmt.Sprintf("SIPs: %d active, %d paused, %d stopped\n",
		d.SIPStatus.Active, d.SIPStatus.Paused, d.SIPStatus.Stopped))
	b.WriteString(fmt.Sprintf("Average SIP ticket: ₹%.0f\n", d.AverageSIPTicketSize))

	if len(d.UpcomingSIPExpiry) > 0 {
		b.WriteString("\n⏰ <b>Upcoming SIP dues:</b>\n")
		for _, u := range d.UpcomingSIPExpiry {
			b.WriteString(fmt.Sprintf("  %s · %s in %d days\n",
				html.EscapeString(u.InvestorName), html.EscapeString(u.SchemeName), u.DaysUntilDue))
		}
	}
	return b.String()
}

// FormatAnalysis formats the headline of one investor analysis.
func FormatAnalysis(res *model.AnalysisResult) string {
	var b strings.Builder
	r := res.Analysis
	b.WriteString(fmt.Sprintf("👤 <b>%s</b> (%s)\n\n", html.EscapeString(r.Name), html.EscapeString(res.InvestorID)))
	b.WriteString(fmt.Sprintf("Value: ₹%.0f | Gain/Loss: %+.2f%%\n", r.Performance.Value, r.Performance.GainLoss))
	b.WriteString(fmt.Sprintf("Portfolio score: %d\n", r.AISummary.PortfolioScore))
	b.WriteString(fmt.Sprintf("Churn risk: %s | Redemption: %s\n", r.ChurnRisk.ChurnRisk, r.RedemptionLikelihood.Flag))
	if r.RiskMismatch.Alert != nil {
		b.WriteString(fmt.Sprintf("⚠️ %s\n", html.EscapeString(*r.RiskMismatch.Alert)))
	}
	if res.Summary.Summary != "" {
		b.WriteString("\n" + html.EscapeString(res.Summary.Summary) + "\n")
	}
	return b.String()
}

// FormatRuns lists recent bulk runs, newest first.
func FormatRuns(runs []recorder.BulkRun) string {
	if len(runs) == 0 {
		return "No bulk runs recorded."
	}
	var b strings.Builder
	b.WriteString("🗂 <b>Recent bulk runs</b>\n\n")
	for _, run := range runs {
		b.WriteString(fmt.Sprintf("%s [%s] %d ok / %d failed\n",
			run.StartedAt.Format("2006-01-02 15:04"), run.Trigger, run.Succeeded, run.Failed))
	}
	return b.String()
}
