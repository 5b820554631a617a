package database

import (
	"context"
	"fmt"
)

const (
	queryDishesAll      = "SELECT * FROM dishes"
	queryDishesByID     = "SELECT * FROM dishes WHERE id = ?"
	queryDishesByFilter = "SELECT * FROM dishes WHERE isVeg = ?"
	queryDishesByPrice  = "SELECT * FROM dishes ORDER BY price"
)

// ListDishes returns every dish
func (db *DB) ListDishes(ctx context.Context) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryDishesAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list dishes: %w", err)
	}
	return rows, nil
}

// DishesByID returns the dishes whose id equals id
func (db *DB) DishesByID(ctx context.Context, id string) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryDishesByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get dish %s: %w", id, err)
	}
	return rows, nil
}

// DishesByFilter returns dishes whose isVeg equals the supplied value.
// A nil isVeg binds NULL.
func (db *DB) DishesByFilter(ctx context.Context, isVeg *string) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryDishesByFilter, nullableString(isVeg))
	if err != nil {
		return nil, fmt.Errorf("failed to filter dishes: %w", err)
	}
	return rows, nil
}

// DishesByPrice returns every dish, cheapest first
func (db *DB) DishesByPrice(ctx context.Context) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryDishesByPrice)
	if err != nil {
		return nil, fmt.Errorf("failed to sort dishes by price: %w", err)
	}
	return rows, nil
}
