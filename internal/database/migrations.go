package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Migrate creates the restaurants and dishes tables when they are missing.
// The serving path never calls it; it backs the init-db command and tests.
func (db *DB) Migrate(ctx context.Context) error {
	log.Info().Str("path", db.path).Msg("Running database migrations")

	_, err := db.exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	var currentVersion int
	err = db.queryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", err)
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}
		log.Info().Int("version", m.Version).Str("name", m.Name).Msg("Applying migration")

		if err := db.Transaction(func(tx *sql.Tx) error {
			for i, stmt := range splitSQLStatements(m.SQL) {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", m.Version, i+1, err)
				}
			}

			if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", m.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
			}
			return nil
		}); err != nil {
			return err
		}
	}

	log.Info().Msg("Database migrations complete")
	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

// splitSQLStatements splits a SQL string into individual statements,
// skipping blank lines and -- comments.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "restaurants_and_dishes",
		SQL: `
			-- Flags are stored as 0/1 integers
			CREATE TABLE IF NOT EXISTS restaurants (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				cuisine TEXT,
				isVeg INTEGER,
				rating REAL,
				priceForTwo INTEGER,
				location TEXT,
				hasOutdoorSeating INTEGER,
				isLuxury INTEGER
			);

			CREATE TABLE IF NOT EXISTS dishes (
				id INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				price REAL,
				rating REAL,
				isVeg INTEGER
			);
		`,
	},
	{
		Version: 2,
		Name:    "query_indexes",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_restaurants_cuisine ON restaurants(cuisine);
			CREATE INDEX IF NOT EXISTS idx_restaurants_rating ON restaurants(rating);
			CREATE INDEX IF NOT EXISTS idx_dishes_price ON dishes(price);
		`,
	},
}
