package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// DB wraps the database connection
type DB struct {
	conn *sql.DB
	path string
}

// New creates a new database connection
func New(dbPath string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database connection
	// Use WAL mode for better concurrency
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	return &DB{
		conn: conn,
		path: dbPath,
	}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent so startup can run this unconditionally.
func (db *DB) Migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS funds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			scheme_code TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			benchmark_name TEXT NOT NULL DEFAULT '',
			expense_ratio_pct REAL NOT NULL DEFAULT 0,
			aum_crores REAL NOT NULL DEFAULT 0,
			inception_date TEXT,
			active INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS nav_history (
			fund_id INTEGER NOT NULL REFERENCES funds(id),
			date TEXT NOT NULL,
			nav REAL NOT NULL,
			PRIMARY KEY (fund_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS benchmark_history (
			benchmark_name TEXT NOT NULL,
			date TEXT NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (benchmark_name, date)
		)`,
		`CREATE TABLE IF NOT EXISTS score_records (
			fund_id INTEGER NOT NULL REFERENCES funds(id),
			score_date TEXT NOT NULL,
			subcategory TEXT NOT NULL,
			components TEXT NOT NULL,
			returns_bucket REAL NOT NULL,
			risk_bucket REAL NOT NULL,
			fundamentals_bucket REAL NOT NULL,
			other_bucket REAL NOT NULL,
			total_score REAL NOT NULL,
			subcategory_rank INTEGER NOT NULL DEFAULT 0,
			subcategory_percentile REAL NOT NULL DEFAULT 0,
			quartile INTEGER NOT NULL DEFAULT 0,
			recommendation TEXT NOT NULL DEFAULT '',
			config_version TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (fund_id, score_date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nav_history_fund_date
			ON nav_history(fund_id, date)`,
		`CREATE INDEX IF NOT EXISTS idx_score_records_subcategory_date
			ON score_records(subcategory, score_date)`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// Exec executes a query without returning rows
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow executes a query that returns at most one row
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}
