package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"PortfolioPulse/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSource reads investor documents stored as JSONB in the investors table:
//
//	CREATE TABLE investors (investor_id TEXT PRIMARY KEY, doc JSONB NOT NULL)
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource opens a pool for databaseURL.
func NewPostgresSource(ctx context.Context, databaseURL string) (*PostgresSource, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Println("[INFO] postgres source connected")
	return &PostgresSource{pool: pool}, nil
}

func (p *PostgresSource) Name() string { return "postgres" }

func (p *PostgresSource) List(ctx context.Context, limit int) ([]model.Investor, error) {
	query := `SELECT doc FROM investors ORDER BY investor_id`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query investors: %w", err)
	}
	defer rows.Close()

	var investors []model.Investor
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan investor: %w", err)
		}
		var inv model.Investor
		if err := json.Unmarshal(doc, &inv); err != nil {
			log.Printf("[WARN] skipping undecodable investor document: %v", err)
			continue
		}
		investors = append(investors, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate investors: %w", err)
	}
	return investors, nil
}

func (p *PostgresSource) Get(ctx context.Context, investorID string) (*model.Investor, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM investors WHERE investor_id = $1`, investorID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrInvestorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query investor %s: %w", investorID, err)
	}
	var inv model.Investor
	if err := json.Unmarshal(doc, &inv); err != nil {
		return nil, fmt.Errorf("decode investor %s: %w", investorID, err)
	}
	return &inv, nil
}

func (p *PostgresSource) Close() error {
	p.pool.Close()
	return nil
}
