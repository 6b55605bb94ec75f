package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists run history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			source      TEXT,
			requested   INTEGER,
			returned    INTEGER,
			from_cache  INTEGER,
			avg_yield   REAL,
			avg_price   REAL,
			elapsed_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_fetch_ts ON fetch_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS simulation_runs (
			id                   TEXT PRIMARY KEY,
			timestamp            INTEGER NOT NULL,
			scenario             TEXT,
			years                INTEGER,
			initial_investment   REAL,
			monthly_contribution REAL,
			start_price          REAL,
			start_yield          REAL,
			price_growth         REAL,
			dividend_growth      REAL,
			reinvest_threshold   REAL,
			final_value          REAL,
			dividends_received   REAL,
			dividends_reinvested REAL,
			annual_income        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sim_ts ON simulation_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFetch(run *FetchRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	fromCache := 0
	if run.FromCache {
		fromCache = 1
	}
	_, err := r.db.Exec(`INSERT INTO fetch_runs
		(id, timestamp, source, requested, returned, from_cache, avg_yield, avg_price, elapsed_ms)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		run.ID, time.Now().Unix(), run.Source, run.Requested, run.Returned,
		fromCache, run.AvgYield, run.AvgPrice, run.Elapsed.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordSimulation(run *SimulationRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	p := run.Params
	t := run.Totals
	_, err := r.db.Exec(`INSERT INTO simulation_runs
		(id, timestamp, scenario, years, initial_investment, monthly_contribution,
		 start_price, start_yield, price_growth, dividend_growth, reinvest_threshold,
		 final_value, dividends_received, dividends_reinvested, annual_income)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.ID, time.Now().Unix(), run.Scenario, p.Years, p.InitialInvestment,
		p.MonthlyContribution, p.StartPrice, p.StartYield, p.PriceGrowth,
		p.DividendGrowth, p.ReinvestThreshold,
		t.PortfolioValue, t.DividendsReceived, t.DividendsReinvested, t.AnnualDividendIncome,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
