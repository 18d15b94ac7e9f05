// Package persistence provides SQLite-based run and statistics storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/aldemir/schelling-explorer/internal/engine"
)

// ErrNoSuchRun is returned when a run id does not exist in the store.
var ErrNoSuchRun = errors.New("persistence: no such run")

// DB wraps a SQLite connection for run persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		dynamics TEXT NOT NULL,
		utility TEXT NOT NULL,
		updater TEXT NOT NULL,
		groups_json TEXT NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS tick_stats (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		interface_density REAL NOT NULL,
		unhappy_json TEXT NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_tick_stats_run ON tick_stats(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// RunRow is one row of the runs table.
type RunRow struct {
	ID         string `db:"id" json:"id"`
	CreatedAt  string `db:"created_at" json:"created_at"`
	Seed       int64  `db:"seed" json:"seed"`
	Width      int    `db:"width" json:"width"`
	Height     int    `db:"height" json:"height"`
	Dynamics   string `db:"dynamics" json:"dynamics"`
	Utility    string `db:"utility" json:"utility"`
	Updater    string `db:"updater" json:"updater"`
	GroupsJSON string `db:"groups_json" json:"-"`
	Ticks      int    `db:"ticks" json:"ticks"`
	Completed  bool   `db:"completed" json:"completed"`
}

// StatsRow is one per-tick statistics record.
type StatsRow struct {
	RunID            string  `db:"run_id" json:"run_id"`
	Tick             int     `db:"tick" json:"tick"`
	InterfaceDensity float64 `db:"interface_density" json:"interface_density"`
	UnhappyJSON      string  `db:"unhappy_json" json:"-"`

	// PercentUnhappy is decoded from UnhappyJSON on read.
	PercentUnhappy []float64 `db:"-" json:"percent_unhappy"`
}

// CreateRun registers a new run for the model's current configuration and
// returns its id.
func (db *DB) CreateRun(m *engine.Model) (string, error) {
	id := uuid.NewString()
	rules := m.Rules()

	groupsJSON, err := json.Marshal(m.Snapshot().Groups)
	if err != nil {
		return "", fmt.Errorf("encode groups: %w", err)
	}

	_, err = db.conn.Exec(`INSERT INTO runs
		(id, created_at, seed, width, height, dynamics, utility, updater, groups_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339), m.Seed(),
		m.Grid().Width(), m.Grid().Height(),
		rules.Dynamics.String(), rules.Utility.String(), rules.Updater.String(),
		string(groupsJSON),
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	slog.Info("run registered", "run_id", id, "seed", m.Seed())
	return id, nil
}

// RecordTick appends one tick's statistics to a run.
func (db *DB) RecordTick(runID string, tick int, density float64, percentUnhappy []float64) error {
	unhappyJSON, err := json.Marshal(percentUnhappy)
	if err != nil {
		return fmt.Errorf("encode unhappy: %w", err)
	}

	_, err = db.conn.Exec(
		"INSERT OR REPLACE INTO tick_stats (run_id, tick, interface_density, unhappy_json) VALUES (?, ?, ?, ?)",
		runID, tick, density, string(unhappyJSON),
	)
	if err != nil {
		return fmt.Errorf("insert tick %d: %w", tick, err)
	}
	return nil
}

// FinishRun marks a run complete and records its final tick count.
func (db *DB) FinishRun(runID string, ticks int) error {
	res, err := db.conn.Exec(
		"UPDATE runs SET ticks = ?, completed = 1 WHERE id = ?",
		ticks, runID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNoSuchRun, runID)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]RunRow, error) {
	var rows []RunRow
	err := db.conn.Select(&rows,
		"SELECT * FROM runs ORDER BY created_at DESC LIMIT ?", limit)
	return rows, err
}

// GetRun fetches a single run by id.
func (db *DB) GetRun(runID string) (*RunRow, error) {
	var row RunRow
	err := db.conn.Get(&row, "SELECT * FROM runs WHERE id = ?", runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNoSuchRun, runID)
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// RunStats returns a run's per-tick statistics in tick order. Asking for a
// run that was never registered is an error, not an empty result.
func (db *DB) RunStats(runID string, fromTick, toTick, limit int) ([]StatsRow, error) {
	if _, err := db.GetRun(runID); err != nil {
		return nil, err
	}

	var rows []StatsRow
	err := db.conn.Select(&rows,
		`SELECT run_id, tick, interface_density, unhappy_json FROM tick_stats
		 WHERE run_id = ? AND tick >= ? AND tick <= ?
		 ORDER BY tick ASC LIMIT ?`,
		runID, fromTick, toTick, limit,
	)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		if err := json.Unmarshal([]byte(rows[i].UnhappyJSON), &rows[i].PercentUnhappy); err != nil {
			return nil, fmt.Errorf("decode tick %d stats: %w", rows[i].Tick, err)
		}
	}
	return rows, nil
}
