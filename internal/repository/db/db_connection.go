package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Supported driver names accepted in configuration.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options control the connection created by Open.
type Options struct {
	Driver       string // sqlite | postgres
	Path         string // sqlite file path
	DSN          string // postgres connection string
	MaxOpenConns int
	MaxIdleConns int
}

// Open connects to the configured store and ensures the schema exists.
func Open(opts Options) (*sql.DB, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverSQLite, "":
		return openSQLite(opts)
	case DriverPostgres, "postgresql":
		return openPostgres(opts)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", opts.Driver)
	}
}

func openSQLite(opts Options) (*sql.DB, error) {
	path := opts.Path
	if path == "" {
		path = "alerts.db"
	}
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// SQLite is not great with many writers
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("set %s: %w", strings.TrimSuffix(pragma, ";"), err)
		}
	}

	return finishOpen(conn, DriverSQLite)
}

func openPostgres(opts Options) (*sql.DB, error) {
	conn, err := sql.Open("postgres", opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if opts.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(opts.MaxIdleConns)
	}

	return finishOpen(conn, DriverPostgres)
}

func finishOpen(conn *sql.DB, driver string) (*sql.DB, error) {
	if err := ensureSchema(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	// Fail fast if the store cannot be reached
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return conn, nil
}

// Rebind rewrites ?-style placeholders into $N form for postgres.
// SQLite queries pass through untouched.
func Rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const schemaBuildings = `
CREATE TABLE IF NOT EXISTS buildings (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    yearly_consumption REAL NOT NULL DEFAULT 0,
    status TEXT NOT NULL,
    owner_id TEXT NOT NULL
);
`

const schemaEnergyReadings = `
CREATE TABLE IF NOT EXISTS energy_readings (
    building_id TEXT NOT NULL,
    ts TIMESTAMP NOT NULL,
    consumption REAL NOT NULL,
    production REAL NOT NULL,
    efficiency REAL NOT NULL,
    co2_saved REAL NOT NULL,
    granularity TEXT NOT NULL,
    PRIMARY KEY (building_id, ts, granularity)
);
`

const schemaSensors = `
CREATE TABLE IF NOT EXISTS sensors (
    id TEXT PRIMARY KEY,
    building_id TEXT NOT NULL,
    name TEXT NOT NULL,
    type TEXT NOT NULL,
    status TEXT NOT NULL,
    last_reading_at TIMESTAMP,
    current_value REAL,
    alert_threshold TEXT
);
`

const schemaAlerts = `
CREATE TABLE IF NOT EXISTS alerts (
    id TEXT PRIMARY KEY,
    building_id TEXT NOT NULL,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    priority TEXT NOT NULL,
    category TEXT NOT NULL,
    metadata TEXT,
    created_at TIMESTAMP NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
    resolved_at TIMESTAMP,
    resolved_by TEXT,
    resolution_note TEXT
);
`

// Partial unique index turning the dedup check-then-write race into a
// store-level conflict. The writer treats the conflict as suppression.
const indexOpenAlerts = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_alerts_open_title
    ON alerts (building_id, title) WHERE NOT is_resolved;
`

const indexAlertsCreated = `
CREATE INDEX IF NOT EXISTS idx_alerts_building_created
    ON alerts (building_id, created_at);
`

func ensureSchema(conn *sql.DB) error {
	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{
		schemaBuildings,
		schemaEnergyReadings,
		schemaSensors,
		schemaAlerts,
		indexOpenAlerts,
		indexAlertsCreated,
	} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
