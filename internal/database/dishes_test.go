package database

import (
	"context"
	"strings"
	"testing"
)

func TestDishQueries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	all, err := db.ListDishes(ctx)
	if err != nil {
		t.Fatalf("ListDishes returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 dishes, got %d", len(all))
	}

	byID, err := db.DishesByID(ctx, "2")
	if err != nil {
		t.Fatalf("DishesByID returned error: %v", err)
	}
	if got := ids(byID); len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected dish [2], got %v", got)
	}

	veg, err := db.DishesByFilter(ctx, ptr("1"))
	if err != nil {
		t.Fatalf("DishesByFilter returned error: %v", err)
	}
	if got := ids(veg); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("expected veg dishes [1 3], got %v", got)
	}

	none, err := db.DishesByFilter(ctx, nil)
	if err != nil {
		t.Fatalf("DishesByFilter(nil) returned error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected NULL filter to match nothing, got %d rows", len(none))
	}
}

func TestDishesByPrice(t *testing.T) {
	db := newTestDB(t)

	rows, err := db.DishesByPrice(context.Background())
	if err != nil {
		t.Fatalf("DishesByPrice returned error: %v", err)
	}
	if got := ids(rows); len(got) != 3 || got[0] != 3 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("expected dishes ordered [3 1 2], got %v", got)
	}
	for i := 1; i < len(rows); i++ {
		if rows[i]["price"].(float64) < rows[i-1]["price"].(float64) {
			t.Fatalf("prices not non-decreasing at %d", i)
		}
	}
}

func TestDishesFailureWithoutTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.exec(ctx, "DROP TABLE dishes"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	_, err := db.ListDishes(ctx)
	if err == nil {
		t.Fatal("expected error after dropping dishes")
	}
	if !strings.Contains(err.Error(), "dishes") {
		t.Fatalf("expected error to mention dishes, got %q", err.Error())
	}
}
