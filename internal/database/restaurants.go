package database

import (
	"context"
	"fmt"
)

const (
	queryRestaurantsAll       = "SELECT * FROM restaurants"
	queryRestaurantsByID      = "SELECT * FROM restaurants WHERE id = ?"
	queryRestaurantsByCuisine = "SELECT * FROM restaurants WHERE cuisine = ?"
	queryRestaurantsByFilter  = "SELECT * FROM restaurants WHERE isVeg = ? AND hasOutdoorSeating = ? AND isLuxury = ?"
	queryRestaurantsByRating  = "SELECT * FROM restaurants ORDER BY rating DESC"
)

// RestaurantFilter holds the three flag filters as received from the query
// string. A nil field was not supplied and binds NULL, which matches no row.
// Values are bound verbatim; the store decides how "true" compares to a
// stored 1.
type RestaurantFilter struct {
	IsVeg             *string
	HasOutdoorSeating *string
	IsLuxury          *string
}

// ListRestaurants returns every restaurant
func (db *DB) ListRestaurants(ctx context.Context) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryRestaurantsAll)
	if err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return rows, nil
}

// RestaurantsByID returns the restaurants whose id equals id. The value is
// bound as received, so a non-numeric id simply matches nothing.
func (db *DB) RestaurantsByID(ctx context.Context, id string) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryRestaurantsByID, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant %s: %w", id, err)
	}
	return rows, nil
}

// RestaurantsByCuisine returns restaurants with an exact cuisine match
func (db *DB) RestaurantsByCuisine(ctx context.Context, cuisine string) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryRestaurantsByCuisine, cuisine)
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurants by cuisine: %w", err)
	}
	return rows, nil
}

// RestaurantsByFilter returns restaurants matching all three flags
func (db *DB) RestaurantsByFilter(ctx context.Context, f RestaurantFilter) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryRestaurantsByFilter,
		nullableString(f.IsVeg),
		nullableString(f.HasOutdoorSeating),
		nullableString(f.IsLuxury),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to filter restaurants: %w", err)
	}
	return rows, nil
}

// RestaurantsByRating returns every restaurant, highest rating first
func (db *DB) RestaurantsByRating(ctx context.Context) ([]Row, error) {
	rows, err := db.selectRows(ctx, queryRestaurantsByRating)
	if err != nil {
		return nil, fmt.Errorf("failed to sort restaurants by rating: %w", err)
	}
	return rows, nil
}
