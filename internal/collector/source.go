package collector

import (
	"context"
	"errors"

	"PortfolioPulse/internal/model"
)

// ErrInvestorNotFound is returned by Get when no document has the requested investor_id.
var ErrInvestorNotFound = errors.New("investor not found")

// Source reads investor documents from the store that owns them. Sources never write.
type Source interface {
	// List returns up to limit investors in a stable order; limit <= 0 returns all of them.
	List(ctx context.Context, limit int) ([]model.Investor, error)
	Get(ctx context.Context, investorID string) (*model.Investor, error)
	Name() string
	Close() error
}
