package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"PortfolioPulse/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis results and bulk runs to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the CLI read results while the scheduler is writing.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_results (
			investor_id TEXT PRIMARY KEY,
			id          TEXT NOT NULL,
			run_id      TEXT,
			analysis    TEXT NOT NULL,
			summary     TEXT NOT NULL,
			created_at  INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analysis_created ON analysis_results(created_at)`,

		`CREATE TABLE IF NOT EXISTS bulk_runs (
			run_id       TEXT PRIMARY KEY,
			triggered_by TEXT,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL,
			count        INTEGER,
			succeeded    INTEGER,
			failed       INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bulk_started ON bulk_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// SaveAnalysis upserts the result for its investor.
func (r *SQLiteRecorder) SaveAnalysis(ctx context.Context, res *model.AnalysisResult) error {
	analysis, err := json.Marshal(res.Analysis)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}
	summary, err := json.Marshal(res.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, err = r.db.ExecContext(ctx, `INSERT INTO analysis_results
		(investor_id, id, run_id, analysis, summary, created_at)
		VALUES (?,?,?,?,?,?)
		ON CONFLICT(investor_id) DO UPDATE SET
			id = excluded.id, run_id = excluded.run_id, analysis = excluded.analysis,
			summary = excluded.summary, created_at = excluded.created_at`,
		res.InvestorID, res.ID, res.RunID, string(analysis), string(summary), res.CreatedAt.UnixNano(),
	)
	return err
}

func (r *SQLiteRecorder) GetAnalysis(ctx context.Context, investorID string) (*model.AnalysisResult, error) {
	var (
		res               model.AnalysisResult
		runID             sql.NullString
		analysis, summary string
		created           int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT investor_id, id, run_id, analysis, summary, created_at
		FROM analysis_results WHERE investor_id = ?`, investorID,
	).Scan(&res.InvestorID, &res.ID, &runID, &analysis, &summary, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis %s: %w", investorID, err)
	}

	res.RunID = runID.String
	res.CreatedAt = time.Unix(0, created).UTC()
	if err := json.Unmarshal([]byte(analysis), &res.Analysis); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", investorID, err)
	}
	if err := json.Unmarshal([]byte(summary), &res.Summary); err != nil {
		return nil, fmt.Errorf("decode summary %s: %w", investorID, err)
	}
	return &res, nil
}

func (r *SQLiteRecorder) RecordBulkRun(ctx context.Context, run *BulkRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.ExecContext(ctx, `INSERT INTO bulk_runs
		(run_id, triggered_by, started_at, finished_at, count, succeeded, failed)
		VALUES (?,?,?,?,?,?,?)`,
		run.RunID, run.Trigger, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
		run.Count, run.Succeeded, run.Failed,
	)
	return err
}

func (r *SQLiteRecorder) RecentBulkRuns(ctx context.Context, limit int) ([]BulkRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, triggered_by, started_at, finished_at, count, succeeded, failed
		FROM bulk_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query bulk runs: %w", err)
	}
	defer rows.Close()

	var runs []BulkRun
	for rows.Next() {
		var (
			run               BulkRun
			trigger           sql.NullString
			started, finished int64
		)
		if err := rows.Scan(&run.RunID, &trigger, &started, &finished, &run.Count, &run.Succeeded, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan bulk run: %w", err)
		}
		run.Trigger = trigger.String
		run.StartedAt = time.Unix(0, started).UTC()
		run.FinishedAt = time.Unix(0, finished).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
