package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Tables the query service reads from. Their schema is owned by whoever
// populates the store.
const (
	TableRestaurants = "restaurants"
	TableDishes      = "dishes"
)

// Options controls how the store is opened
type Options struct {
	// ReadOnly opens the file with mode=ro. A missing file is then an
	// error instead of being created empty.
	ReadOnly bool
}

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
}

// New opens the database file and confirms the connection is usable
func New(path string, opts Options) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)
	if opts.ReadOnly {
		dsn += "&mode=ro"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite serves concurrent readers; writes only happen in init-db
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	log.Debug().Str("path", path).Bool("read_only", opts.ReadOnly).Msg("Database connection established")

	return &DB{
		conn: conn,
		path: path,
	}, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close closes the underlying connection pool
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks that the store still answers
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Verify checks that both queried tables exist. The server refuses to start
// without them rather than answering every request with a 500.
func (db *DB) Verify(ctx context.Context) error {
	for _, table := range []string{TableRestaurants, TableDishes} {
		var name string
		err := db.queryRow(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		if err == sql.ErrNoRows {
			return fmt.Errorf("table %s not found in %s", table, db.path)
		}
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", table, err)
		}
	}
	return nil
}

// Transaction wraps a function in a database transaction
func (db *DB) Transaction(fn func(*sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
