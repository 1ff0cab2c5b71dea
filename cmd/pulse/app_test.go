package main

import (
	"testing"

	"PortfolioPulse/internal/config"
	"PortfolioPulse/internal/metrics"
	"PortfolioPulse/internal/model"
)

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name       string
		forecaster string
		amc        float64
		wantMethod string
		wantAMC    float64
	}{
		{"defaults", config.ForecasterTrend, 0, metrics.MethodTrailingTrend, 0.40},
		{"random with override", config.ForecasterRandom, 0.5, metrics.MethodRandomUniform, 0.5},
		{"fixed", config.ForecasterFixed, 0, metrics.MethodFixed, 0.40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{}
			cfg.Metrics.Forecaster = tt.forecaster
			cfg.Metrics.ForecastSeed = 42
			cfg.Metrics.FixedGrowthPct = 3
			cfg.Metrics.AMCConcentration = tt.amc

			eng, err := newEngine(cfg)
			if err != nil {
				t.Fatal(err)
			}
			if eng.Thresholds.AMCConcentration != tt.wantAMC {
				t.Errorf("amc cutoff = %v, want %v", eng.Thresholds.AMCConcentration, tt.wantAMC)
			}
			r := eng.Evaluate(&model.Investor{InvestorID: "INV001", TotalAUM: 1000})
			if r.GrowthForecast.Method != tt.wantMethod {
				t.Errorf("method = %s, want %s", r.GrowthForecast.Method, tt.wantMethod)
			}
		})
	}

	cfg := &config.Config{}
	cfg.Metrics.Forecaster = "oracle"
	if _, err := newEngine(cfg); err == nil {
		t.Error("expected error for unknown forecaster")
	}
}
