// Package persistence provides the SQLite chronicle of simulation runs:
// events, hourly region stats and settled documents.
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

	"github.com/talgya/fevered-world/internal/clock"
	"github.com/talgya/fevered-world/internal/economy"
	"github.com/talgya/fevered-world/internal/engine"
	"github.com/talgya/fevered-world/internal/sim"
)

// ErrNoRun is returned by writes made before BeginRun.
var ErrNoRun = errors.New("no run started")

// DB wraps a SQLite connection for the chronicle. Writes belong to the
// run opened with BeginRun.
type DB struct {
	conn *sqlx.DB
	run  uuid.UUID
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
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
		seed INTEGER NOT NULL,
		regions INTEGER NOT NULL,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		game_time INTEGER NOT NULL DEFAULT 0,
		outcome TEXT NOT NULL DEFAULT 'ongoing'
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		time INTEGER NOT NULL,
		region TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats (
		run_id TEXT NOT NULL REFERENCES runs(id),
		time INTEGER NOT NULL,
		region_index INTEGER NOT NULL,
		region TEXT NOT NULL,
		population INTEGER NOT NULL,
		homeless INTEGER NOT NULL,
		unemployed INTEGER NOT NULL,
		starved INTEGER NOT NULL,
		born INTEGER NOT NULL,
		silver INTEGER NOT NULL,
		resources_json TEXT NOT NULL,
		PRIMARY KEY (run_id, time, region_index)
	);

	CREATE TABLE IF NOT EXISTS documents (
		run_id TEXT NOT NULL REFERENCES runs(id),
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		doc_type INTEGER NOT NULL,
		side_a TEXT NOT NULL,
		side_b TEXT NOT NULL,
		created INTEGER NOT NULL,
		expires INTEGER NOT NULL,
		state TEXT NOT NULL,
		requirements TEXT NOT NULL,
		rewards TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_time ON events(run_id, time);
	CREATE INDEX IF NOT EXISTS idx_stats_region ON stats(run_id, region_index);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Run is one recorded simulation run.
type Run struct {
	ID        string        `db:"id" json:"id"`
	Seed      int64         `db:"seed" json:"seed"`
	Regions   int           `db:"regions" json:"regions"`
	StartedAt int64         `db:"started_at" json:"started_at"`
	EndedAt   sql.NullInt64 `db:"ended_at" json:"-"`
	GameTime  clock.TimeT   `db:"game_time" json:"game_time"`
	Outcome   string        `db:"outcome" json:"outcome"`
}

// BeginRun records a new run and directs later writes to it.
func (db *DB) BeginRun(seed int64, regions int) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, regions, started_at) VALUES (?, ?, ?, ?)",
		id.String(), seed, regions, time.Now().Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin run: %w", err)
	}
	db.run = id
	slog.Info("chronicle run started", "run", id, "seed", seed)
	return id, nil
}

// RunID returns the current run, or uuid.Nil.
func (db *DB) RunID() uuid.UUID { return db.run }

// EndRun stamps the current run with its outcome.
func (db *DB) EndRun(now clock.TimeT, outcome engine.Outcome) error {
	if db.run == uuid.Nil {
		return ErrNoRun
	}
	_, err := db.conn.Exec(
		"UPDATE runs SET ended_at = ?, game_time = ?, outcome = ? WHERE id = ?",
		time.Now().Unix(), now, outcome.String(), db.run.String(),
	)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	return nil
}

// SaveEvents appends events to the current run.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}
	if db.run == uuid.Nil {
		return ErrNoRun
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (run_id, time, region, category, description) VALUES (?, ?, ?, ?, ?)",
			db.run.String(), e.Time, e.Region, e.Category, e.Description,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}

	return tx.Commit()
}

// SaveStats stores one sample per region at now.
func (db *DB) SaveStats(now clock.TimeT, stats []engine.RegionStats) error {
	if db.run == uuid.Nil {
		return ErrNoRun
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO stats
		(run_id, time, region_index, region, population, homeless, unemployed,
		 starved, born, silver, resources_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range stats {
		resJSON, err := json.Marshal(s.Resources)
		if err != nil {
			return fmt.Errorf("encode resources of %s: %w", s.Name, err)
		}
		_, err = stmt.Exec(
			db.run.String(), now, s.Index, s.Name, s.Population, s.Homeless,
			s.Unemployed, s.Starved, s.Born, s.Silver, string(resJSON),
		)
		if err != nil {
			return fmt.Errorf("insert stats %s: %w", s.Name, err)
		}
	}

	return tx.Commit()
}

// SaveDocuments upserts documents by id.
func (db *DB) SaveDocuments(docs []*sim.Document) error {
	if len(docs) == 0 {
		return nil
	}
	if db.run == uuid.Nil {
		return ErrNoRun
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range docs {
		_, err := tx.Exec(`INSERT OR REPLACE INTO documents
			(run_id, id, title, doc_type, side_a, side_b, created, expires, state, requirements, rewards)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			db.run.String(), d.ID.String(), d.Title, uint32(d.Type),
			d.SideA.PartyName(), d.SideB.PartyName(), d.Created, d.Expires,
			d.State.String(), economy.Describe(d.Requirements), economy.Describe(d.Rewards),
		)
		if err != nil {
			return fmt.Errorf("insert document %s: %w", d.Title, err)
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// EventRow is a stored event.
type EventRow struct {
	RunID       string      `db:"run_id" json:"run_id"`
	Time        clock.TimeT `db:"time" json:"time"`
	Region      string      `db:"region" json:"region"`
	Category    string      `db:"category" json:"category"`
	Description string      `db:"description" json:"description"`
}

// RecentEvents returns the most recent N events of any run, newest first.
func (db *DB) RecentEvents(limit int) ([]EventRow, error) {
	var events []EventRow
	err := db.conn.Select(&events,
		"SELECT run_id, time, region, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, regions, started_at, ended_at, game_time, outcome FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// StatRow is a stored region sample.
type StatRow struct {
	Time        clock.TimeT `db:"time" json:"time"`
	RegionIndex int         `db:"region_index" json:"region_index"`
	Region      string      `db:"region" json:"region"`
	Population  int         `db:"population" json:"population"`
	Homeless    int         `db:"homeless" json:"homeless"`
	Unemployed  int         `db:"unemployed" json:"unemployed"`
	Starved     int         `db:"starved" json:"starved"`
	Born        int         `db:"born" json:"born"`
	Silver      int         `db:"silver" json:"silver"`
	Resources   string      `db:"resources_json" json:"resources"`
}

// RegionHistory returns the samples of one region in run, oldest first.
func (db *DB) RegionHistory(run uuid.UUID, regionIndex int) ([]StatRow, error) {
	var rows []StatRow
	err := db.conn.Select(&rows,
		`SELECT time, region_index, region, population, homeless, unemployed, starved, born, silver, resources_json
		 FROM stats WHERE run_id = ? AND region_index = ? ORDER BY time`,
		run.String(), regionIndex,
	)
	return rows, err
}

// DocumentStates counts the current run's documents by state.
func (db *DB) DocumentStates(run uuid.UUID) (map[string]int, error) {
	var rows []struct {
		State string `db:"state"`
		N     int    `db:"n"`
	}
	err := db.conn.Select(&rows, "SELECT state, COUNT(*) AS n FROM documents WHERE run_id = ? GROUP BY state", run.String())
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.State] = r.N
	}
	return out, nil
}
