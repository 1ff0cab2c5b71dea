package metrics

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"PortfolioPulse/internal/calculator"
	"PortfolioPulse/internal/model"
)

// Forecast methods.
const (
	MethodTrailingTrend = "trailing-trend"
	MethodRandomUniform = "random-uniform"
	MethodFixed         = "fixed"
)

// Forecaster kinds accepted by NewForecaster.
const (
	KindTrend  = "trend"
	KindRandom = "random"
	KindFixed  = "fixed"
)

// Forecaster projects an investor's annual AUM growth in percent.
type Forecaster interface {
	Forecast(inv *model.Investor, now time.Time) model.GrowthForecast
}

// TrendForecaster extrapolates the mean monthly net contribution (SIP and Buy minus Sell)
// over the trailing window to a year, expressed as a percentage of current AUM.
// It does not model market returns.
type TrendForecaster struct {
	Months int
	MinPct float64
	MaxPct float64
}

// NewTrendForecaster builds a TrendForecaster from the window and bounds in th.
func NewTrendForecaster(th Thresholds) *TrendForecaster {
	return &TrendForecaster{Months: th.ForecastMonths, MinPct: th.ForecastMinPct, MaxPct: th.ForecastMaxPct}
}

func (f *TrendForecaster) Forecast(inv *model.Investor, now time.Time) model.GrowthForecast {
	result := model.GrowthForecast{Method: MethodTrailingTrend}
	aum := inv.TotalAUM.Float()
	if f.Months <= 0 || aum <= 0 {
		return result
	}

	months := calculator.TrailingMonths(now, f.Months)
	index := make(map[string]int, len(months))
	for i, m := range months {
		index[calculator.MonthKey(m)] = i
	}

	flows := make([]float64, len(months))
	for i := range inv.Holdings {
		for _, txn := range inv.Holdings[i].Transactions {
			var sign float64
			switch txn.TxnType {
			case model.TxnSIP, model.TxnBuy:
				sign = 1
			case model.TxnSell:
				sign = -1
			default:
				continue
			}
			d, err := calculator.ParseDate(txn.TxnDate)
			if err != nil {
				continue
			}
			if idx, ok := index[calculator.MonthKey(d)]; ok {
				flows[idx] += sign * txn.TxnAmount.Float()
			}
		}
	}

	avg, err := calculator.CalculateSMA(flows, f.Months)
	if err != nil {
		return result
	}
	pct := avg * 12 / aum * 100
	result.ProjectedGrowthPct = calculator.Round2(calculator.Clamp(pct, f.MinPct, f.MaxPct))
	return result
}

// RandomForecaster draws uniformly from [Min, Max]. It exists for demo data only.
type RandomForecaster struct {
	Min, Max float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomForecaster seeds its own source so repeated runs with the same seed agree.
func NewRandomForecaster(seed int64, min, max float64) *RandomForecaster {
	return &RandomForecaster{Min: min, Max: max, rng: rand.New(rand.NewSource(seed))}
}

func (f *RandomForecaster) Forecast(_ *model.Investor, _ time.Time) model.GrowthForecast {
	f.mu.Lock()
	v := f.rng.Float64()
	f.mu.Unlock()
	return model.GrowthForecast{
		ProjectedGrowthPct: calculator.Round2(f.Min + v*(f.Max-f.Min)),
		Method:             MethodRandomUniform,
	}
}

// FixedForecaster always returns Pct.
type FixedForecaster struct {
	Pct float64
}

func (f FixedForecaster) Forecast(_ *model.Investor, _ time.Time) model.GrowthForecast {
	return model.GrowthForecast{ProjectedGrowthPct: f.Pct, Method: MethodFixed}
}

// NewForecaster builds the forecaster named by kind. The random forecaster draws within th's forecast
// bounds; a zero seed is replaced by the current time.
func NewForecaster(kind string, th Thresholds, seed int64, fixedPct float64) (Forecaster, error) {
	switch kind {
	case "", KindTrend:
		return NewTrendForecaster(th), nil
	case KindRandom:
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewRandomForecaster(seed, th.ForecastMinPct, th.ForecastMaxPct), nil
	case KindFixed:
		return FixedForecaster{Pct: fixedPct}, nil
	default:
		return nil, fmt.Errorf("unknown forecaster %q", kind)
	}
}
