package database

import (
	"context"
	"fmt"
)

// TableCounts holds row counts for the queried tables
type TableCounts struct {
	Restaurants int64 `json:"restaurants"`
	Dishes      int64 `json:"dishes"`
}

// Counts returns the number of rows in each queried table. The monitor uses
// it as a read-only probe of the store.
func (db *DB) Counts(ctx context.Context) (TableCounts, error) {
	var counts TableCounts
	if err := db.queryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&counts.Restaurants); err != nil {
		return counts, fmt.Errorf("failed to count restaurants: %w", err)
	}
	if err := db.queryRow(ctx, "SELECT COUNT(*) FROM dishes").Scan(&counts.Dishes); err != nil {
		return counts, fmt.Errorf("failed to count dishes: %w", err)
	}
	return counts, nil
}
