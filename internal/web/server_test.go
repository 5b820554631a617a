package web

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/saltyorg/foodquery/internal/database"
)

func newTestServer(t *testing.T) (*Server, *database.DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "database.sqlite")
	db, err := database.New(path, database.Options{})
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	seed(t, path,
		`INSERT INTO restaurants (id, name, cuisine, isVeg, rating, priceForTwo, location, hasOutdoorSeating, isLuxury) VALUES
			(1, 'Spice Kitchen', 'Indian', 1, 4.5, 1500, 'New Delhi', 1, 0),
			(2, 'Olive Bistro', 'Italian', 0, 4.1, 2000, 'Mumbai', 0, 1),
			(3, 'Green Leaf', 'Indian', 1, 4.8, 800, 'Bangalore', 1, 0)`,
		`INSERT INTO dishes (id, name, price, rating, isVeg) VALUES
			(1, 'Paneer Butter Masala', 250, 4.5, 1),
			(2, 'Chicken Tikka', 300, 4.7, 0),
			(3, 'Veg Biryani', 200, 4.2, 1)`,
	)

	return NewServer(db, nil, Options{}), db
}

// seed writes through a second connection, the way an external loader would
func seed(t *testing.T, path string, statements ...string) {
	t.Helper()

	writer, err := database.New(path, database.Options{})
	if err != nil {
		t.Fatalf("failed to open writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Transaction(func(tx *sql.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
}

func request(t *testing.T, s *Server, target string) (int, string, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode %s body %q: %v", target, rec.Body.String(), err)
	}
	return rec.Code, rec.Body.String(), body
}

func items(t *testing.T, body map[string]any, key string) []map[string]any {
	t.Helper()

	raw, ok := body[key].([]any)
	if !ok {
		t.Fatalf("expected %q array in %v", key, body)
	}
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.(map[string]any))
	}
	return out
}

func TestRestaurantRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name    string
		target  string
		status  int
		wantIDs []float64
		message string
	}{
		{name: "all", target: "/restaurants", status: 200, wantIDs: []float64{1, 2, 3}},
		{name: "by id", target: "/restaurants/details/1", status: 200, wantIDs: []float64{1}},
		{name: "missing id", target: "/restaurants/details/99", status: 404, message: "No restaurant found of id: 99"},
		{name: "by cuisine", target: "/restaurants/cuisine/Indian", status: 200, wantIDs: []float64{1, 3}},
		{name: "unknown cuisine", target: "/restaurants/cuisine/Thai", status: 404, message: "No restaurant found having cuisine: Thai"},
		{
			name:    "injection in cuisine",
			target:  "/restaurants/cuisine/" + url.PathEscape("' OR '1'='1"),
			status:  404,
			message: "No restaurant found having cuisine: ' OR '1'='1",
		},
		{name: "filter numeric flags", target: "/restaurants/filter?isVeg=1&hasOutdoorSeating=1&isLuxury=0", status: 200, wantIDs: []float64{1, 3}},
		{
			name:    "filter boolean words",
			target:  "/restaurants/filter?isVeg=true&hasOutdoorSeating=true&isLuxury=false",
			status:  404,
			message: "No restaurant found with isVeg: true, hasOutdoorSeating: true, isLuxury: false!",
		},
		{name: "sort by rating", target: "/restaurants/sort-by-rating", status: 200, wantIDs: []float64{3, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw, body := request(t, s, tt.target)
			if status != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, status, raw)
			}
			if tt.message != "" {
				if body["message"] != tt.message {
					t.Fatalf("expected message %q, got %v", tt.message, body["message"])
				}
				return
			}
			got := items(t, body, "restaurants")
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("expected ids %v, got %d rows: %s", tt.wantIDs, len(got), raw)
			}
			for i, row := range got {
				if row["id"] != tt.wantIDs[i] {
					t.Fatalf("expected ids %v, got %s", tt.wantIDs, raw)
				}
			}
		})
	}
}

func TestRestaurantRowPassthrough(t *testing.T) {
	s, _ := newTestServer(t)

	_, _, body := request(t, s, "/restaurants/details/1")
	row := items(t, body, "restaurants")[0]

	want := map[string]any{
		"id":                float64(1),
		"name":              "Spice Kitchen",
		"cuisine":           "Indian",
		"isVeg":             float64(1),
		"rating":            4.5,
		"priceForTwo":       float64(1500),
		"location":          "New Delhi",
		"hasOutdoorSeating": float64(1),
		"isLuxury":          float64(0),
	}
	if len(row) != len(want) {
		t.Fatalf("expected %d columns, got %v", len(want), row)
	}
	for k, v := range want {
		if row[k] != v {
			t.Errorf("column %s: expected %v, got %v", k, v, row[k])
		}
	}
}

func TestDishRoutes(t *testing.T) {
	s, _ := newTestServer(t)

	status, _, body := request(t, s, "/dishes")
	if status != http.StatusOK || len(items(t, body, "dishes")) != 3 {
		t.Fatalf("expected 3 dishes, got %d %v", status, body)
	}

	status, _, body = request(t, s, "/dishes/details/2")
	if status != http.StatusOK || items(t, body, "dishes")[0]["name"] != "Chicken Tikka" {
		t.Fatalf("expected dish 2, got %d %v", status, body)
	}

	status, _, body = request(t, s, "/dishes/details/99")
	if status != http.StatusNotFound || body["message"] != "No dish found of id: 99" {
		t.Fatalf("expected 404 for dish 99, got %d %v", status, body)
	}

	status, _, body = request(t, s, "/dishes/filter?isVeg=0")
	if status != http.StatusOK || len(items(t, body, "dishes")) != 1 {
		t.Fatalf("expected one non-veg dish, got %d %v", status, body)
	}

	status, _, body = request(t, s, "/dishes/filter?isVeg=maybe")
	if status != http.StatusNotFound || body["message"] != "No dish found by isVeg: maybe" {
		t.Fatalf("expected 404 echoing isVeg, got %d %v", status, body)
	}

	status, _, body = request(t, s, "/dishes/sort-by-price")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	prev := -1.0
	for _, d := range items(t, body, "dishes") {
		price := d["price"].(float64)
		if price < prev {
			t.Fatalf("prices not non-decreasing: %v", body)
		}
		prev = price
	}
}

func TestEmptyTablesReturnNotFound(t *testing.T) {
	s, db := newTestServer(t)
	seed(t, db.Path(), "DELETE FROM restaurants", "DELETE FROM dishes")

	for target, message := range map[string]string{
		"/restaurants":                "No restaurants found!",
		"/restaurants/sort-by-rating": "No restaurant found!",
		"/dishes":                     "No dishes found!",
		"/dishes/sort-by-price":       "No dish found!",
	} {
		status, _, body := request(t, s, target)
		if status != http.StatusNotFound || body["message"] != message {
			t.Errorf("%s: expected 404 %q, got %d %v", target, message, status, body)
		}
	}
}

func TestDroppedTableReturnsServerError(t *testing.T) {
	s, db := newTestServer(t)
	seed(t, db.Path(), "DROP TABLE dishes")

	status, _, body := request(t, s, "/dishes")
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", status)
	}
	msg, _ := body["error"].(string)
	if !strings.Contains(msg, "dishes") {
		t.Fatalf("expected non-empty error mentioning dishes, got %q", msg)
	}

	// restaurants are unaffected
	status, _, _ = request(t, s, "/restaurants")
	if status != http.StatusOK {
		t.Fatalf("expected restaurants to still answer 200, got %d", status)
	}
}

func TestRepeatedRequestsAreIdentical(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{"/restaurants", "/restaurants/filter?isVeg=1&hasOutdoorSeating=1&isLuxury=0", "/dishes/sort-by-price"} {
		_, first, _ := request(t, s, target)
		_, second, _ := request(t, s, target)
		if first != second {
			t.Errorf("%s: responses differ:\n%s\n%s", target, first, second)
		}
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	s, _ := newTestServer(t)

	status, _, body := request(t, s, "/menus")
	if status != http.StatusNotFound || body["error"] == nil {
		t.Fatalf("expected JSON 404 for unknown route, got %d %v", status, body)
	}

	req := httptest.NewRequest(http.MethodPost, "/dishes", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for POST, got %d", rec.Code)
	}
}
