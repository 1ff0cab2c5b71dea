package collector

import (
	"context"

	"PortfolioPulse/internal/model"
)

// MemorySource serves a fixed population held in memory.
type MemorySource struct {
	Investors []model.Investor
}

func NewMemorySource(investors []model.Investor) *MemorySource {
	return &MemorySource{Investors: investors}
}

func (m *MemorySource) Name() string { return "memory" }

func (m *MemorySource) List(_ context.Context, limit int) ([]model.Investor, error) {
	return head(m.Investors, limit), nil
}

func (m *MemorySource) Get(_ context.Context, investorID string) (*model.Investor, error) {
	return find(m.Investors, investorID)
}

func (m *MemorySource) Close() error { return nil }

// head copies the first limit investors so callers cannot alias the source's slice.
func head(investors []model.Investor, limit int) []model.Investor {
	n := len(investors)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Investor, n)
	copy(out, investors[:n])
	return out
}

func find(investors []model.Investor, investorID string) (*model.Investor, error) {
	for i := range investors {
		if investors[i].InvestorID == investorID {
			inv := investors[i]
			return &inv, nil
		}
	}
	return nil, ErrInvestorNotFound
}
