package metrics

import (
	"math"
	"time"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// GoalAchievementForecast estimates the monthly contribution needed to reach the declared corpus.
// Missing or unparseable goal fields short-circuit to an explicit status instead of numbers.
func GoalAchievementForecast(inv *model.Investor, th Thresholds, now time.Time) model.GoalForecast {
	target := inv.GoalTargetCorpus.Float()
	if target == 0 {
		return model.GoalForecast{Status: model.GoalNoGoalDeclared}
	}
	if inv.GoalTimeline == "" {
		return model.GoalForecast{Status: model.GoalNoTimelineDeclared}
	}
	goalDate, err := calculator.ParseDate(inv.GoalTimeline)
	if err != nil {
		return model.GoalForecast{Status: model.GoalInvalidTimeline}
	}

	perMonth := th.DaysPerMonth
	if perMonth <= 0 {
		perMonth = 30
	}
	months := math.Max(1, float64(calculator.DaysBetween(now, goalDate))/perMonth)
	needed := (target - inv.TotalAUM.Float()) / months

	return model.GoalForecast{
		Status:        model.GoalProjected,
		Target:        target,
		MonthsLeft:    int(math.Round(months)),
		NeededMonthly: calculator.Round2(needed),
	}
}
