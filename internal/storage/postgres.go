package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/deusflow/trends/internal/diff"
	"github.com/deusflow/trends/internal/logger"
)

// PostgresStore keeps the seen sets in a seen_trends table, one row per
// (region, key). The connection is scoped to a single run: opened by
// NewPostgresStore, released by Close.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects, verifies the connection and makes sure the
// schema exists.
func NewPostgresStore(connectionString string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (ps *PostgresStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS seen_trends (
		region VARCHAR(16) NOT NULL,
		key TEXT NOT NULL,
		first_seen TIMESTAMP NOT NULL DEFAULT NOW(),
		PRIMARY KEY (region, key)
	);

	CREATE INDEX IF NOT EXISTS idx_seen_trends_region ON seen_trends(region);
	`

	if _, err := ps.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Read returns the seen-key set for a region; a region with no rows is an
// empty set.
func (ps *PostgresStore) Read(region string) (map[string]bool, error) {
	rows, err := ps.db.Query(`SELECT key FROM seen_trends WHERE region = $1`, region)
	if err != nil {
		return nil, fmt.Errorf("failed to read seen set: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan seen key: %w", err)
		}
		set[key] = true
	}
	return set, rows.Err()
}

// Write persists the run's keys. Additive mode inserts with ON CONFLICT DO
// NOTHING; replace mode deletes the region's rows and re-inserts inside one
// transaction so a crash never leaves a half-written set.
func (ps *PostgresStore) Write(region string, keys []string, mode diff.Mode) error {
	tx, err := ps.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin write: %w", err)
	}
	defer tx.Rollback()

	if mode == diff.Replace {
		if _, err := tx.Exec(`DELETE FROM seen_trends WHERE region = $1`, region); err != nil {
			return fmt.Errorf("failed to clear seen set: %w", err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO seen_trends (region, key)
		VALUES ($1, $2)
		ON CONFLICT (region, key) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, key := range keys {
		if _, err := stmt.Exec(region, key); err != nil {
			return fmt.Errorf("failed to insert seen key: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seen set: %w", err)
	}

	logger.Debug("seen set persisted", "region", region, "keys", len(keys), "mode", string(mode))
	return nil
}

// Close releases the run-scoped connection.
func (ps *PostgresStore) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}
