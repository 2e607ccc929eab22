// Package store persists BIQ entities in SQLite.
//
// It is a reference adapter for the data contracts: every row converts to
// and from the model, limit and api types, so optional fields and relation
// states survive storage the same way they survive the wire. Lookups return
// nil, nil when nothing matches.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/qbiq/biq-go/pkg/ident"
)

// Store provides SQLite persistence for accounts, devices, groups, limits,
// observations and the mobile devices accounts receive alerts on.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore creates a new store with the given database path.
// Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// An in-memory database lives as long as its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA journal_mode = WAL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &Store{db: db}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return s, nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		flags INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		full_name TEXT,
		has_meta INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS aliases (
		address TEXT PRIMARY KEY,
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		priority INTEGER NOT NULL DEFAULT 0,
		flags INTEGER NOT NULL DEFAULT 0,
		pw_salt TEXT,
		pw_hash TEXT
	);

	CREATE TABLE IF NOT EXISTS devices (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		owner_id TEXT,
		flags INTEGER,
		latitude REAL,
		longitude REAL
	);

	CREATE TABLE IF NOT EXISTS device_groups (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS group_memberships (
		group_id TEXT NOT NULL REFERENCES device_groups(id) ON DELETE CASCADE,
		device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		PRIMARY KEY (group_id, device_id)
	);

	CREATE TABLE IF NOT EXISTS access_permissions (
		account_id TEXT NOT NULL,
		device_id TEXT NOT NULL REFERENCES devices(id) ON DELETE CASCADE,
		flags INTEGER,
		PRIMARY KEY (account_id, device_id)
	);

	CREATE TABLE IF NOT EXISTS device_limits (
		user_id TEXT NOT NULL,
		device_id TEXT NOT NULL,
		limit_type INTEGER NOT NULL,
		limit_value REAL NOT NULL,
		limit_value_string TEXT,
		PRIMARY KEY (user_id, device_id, limit_type)
	);

	CREATE TABLE IF NOT EXISTS push_limits (
		device_id TEXT NOT NULL,
		limit_type INTEGER NOT NULL,
		limit_value REAL NOT NULL,
		limit_value_string TEXT,
		PRIMARY KEY (device_id, limit_type)
	);

	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		device_id TEXT NOT NULL,
		obstime REAL NOT NULL,
		charging INTEGER NOT NULL,
		firmware TEXT NOT NULL,
		wifi_firmware TEXT,
		battery REAL NOT NULL,
		temp REAL NOT NULL,
		light INTEGER NOT NULL,
		humidity INTEGER NOT NULL,
		xaxis INTEGER NOT NULL,
		yaxis INTEGER NOT NULL,
		zaxis INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS mobile_devices (
		account_id TEXT NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
		device_id TEXT NOT NULL,
		device_type TEXT NOT NULL,
		PRIMARY KEY (account_id, device_id)
	);

	CREATE INDEX IF NOT EXISTS idx_aliases_account ON aliases(account_id);
	CREATE INDEX IF NOT EXISTS idx_devices_owner ON devices(owner_id);
	CREATE INDEX IF NOT EXISTS idx_groups_owner ON device_groups(owner_id);
	CREATE INDEX IF NOT EXISTS idx_memberships_device ON group_memberships(device_id);
	CREATE INDEX IF NOT EXISTS idx_permissions_device ON access_permissions(device_id);
	CREATE INDEX IF NOT EXISTS idx_observations_device_time ON observations(device_id, obstime);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ---------------------------------------------------------------------------
// Column helpers
// ---------------------------------------------------------------------------

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// Flags are uint64 on the wire; SQLite integers are signed, so the bits are
// stored as int64 unchanged.
func nullFlags(p *uint64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func flagsPtr(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	f := uint64(ni.Int64)
	return &f
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	f := nf.Float64
	return &f
}

func nullID(p *ident.ID) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: p.String(), Valid: true}
}

func idPtr(ns sql.NullString) (*ident.ID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := parseID(ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseID(s string) (ident.ID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return ident.Nil, fmt.Errorf("stored id %q: %w", s, err)
	}
	return id, nil
}
