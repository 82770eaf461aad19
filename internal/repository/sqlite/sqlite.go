// Package sqlite implements the repository interfaces on an embedded SQLite
// database (modernc.org/sqlite, pure Go, no CGo).
//
// One file on disk, WAL mode for concurrent reads during writes, and foreign
// keys ON so saved_pins rows cascade away with their pin or user. Use
// ":memory:" for tests.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory database exists per connection, so the pool must not
	// grow past one or queries would see different databases.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The ON DELETE CASCADE
	// clauses below only fire with this pragma enabled.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	// email and github_id are nullable-unique: credentials accounts store
	// NULL in github_id, OAuth accounts with a hidden GitHub email store
	// NULL in email, and SQLite allows any number of NULLs under a UNIQUE
	// constraint.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT UNIQUE,
			password_hash TEXT NOT NULL DEFAULT '',
			role          TEXT NOT NULL DEFAULT 'explorer',
			image         TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			github_id     INTEGER UNIQUE,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS pins (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			image_url    TEXT NOT NULL,
			code_snippet TEXT NOT NULL DEFAULT '',
			language     TEXT NOT NULL DEFAULT '',
			tags         TEXT NOT NULL DEFAULT '',
			author_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pins_created_at ON pins(created_at);
		CREATE INDEX IF NOT EXISTS idx_pins_author_id ON pins(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating pins table: %w", err)
	}

	// UNIQUE(user_id, pin_id) is the arbiter for concurrent duplicate saves:
	// exactly one of two racing inserts succeeds, the other comes back as a
	// constraint violation that Save translates to ErrConflict.
	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS saved_pins (
			id       TEXT PRIMARY KEY,
			user_id  TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			pin_id   TEXT NOT NULL REFERENCES pins(id) ON DELETE CASCADE,
			saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, pin_id)
		);
		CREATE INDEX IF NOT EXISTS idx_saved_pins_user_id ON saved_pins(user_id);
		CREATE INDEX IF NOT EXISTS idx_saved_pins_pin_id ON saved_pins(pin_id);
	`)
	if err != nil {
		return fmt.Errorf("creating saved_pins table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces these with the extended result code 2067.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlitelib.SQLITE_CONSTRAINT_UNIQUE
}
