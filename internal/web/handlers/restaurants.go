package handlers

import (
	"fmt"
	"net/http"

	"github.com/saltyorg/foodquery/internal/database"
)

// ListRestaurants handles GET /restaurants
func (h *Handlers) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListRestaurants(r.Context())
	h.respond(w, r, keyRestaurants, rows, err, "No restaurants found!")
}

// RestaurantDetails handles GET /restaurants/details/{id}
func (h *Handlers) RestaurantDetails(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	rows, err := h.store.RestaurantsByID(r.Context(), id)
	h.respond(w, r, keyRestaurants, rows, err, "No restaurant found of id: "+id)
}

// RestaurantsByCuisine handles GET /restaurants/cuisine/{cuisine}
func (h *Handlers) RestaurantsByCuisine(w http.ResponseWriter, r *http.Request) {
	cuisine := pathParam(r, "cuisine")
	rows, err := h.store.RestaurantsByCuisine(r.Context(), cuisine)
	h.respond(w, r, keyRestaurants, rows, err, "No restaurant found having cuisine: "+cuisine)
}

// RestaurantsByFilter handles GET /restaurants/filter?isVeg=&hasOutdoorSeating=&isLuxury=
func (h *Handlers) RestaurantsByFilter(w http.ResponseWriter, r *http.Request) {
	filter := database.RestaurantFilter{
		IsVeg:             queryParam(r, "isVeg"),
		HasOutdoorSeating: queryParam(r, "hasOutdoorSeating"),
		IsLuxury:          queryParam(r, "isLuxury"),
	}

	rows, err := h.store.RestaurantsByFilter(r.Context(), filter)
	h.respond(w, r, keyRestaurants, rows, err, fmt.Sprintf(
		"No restaurant found with isVeg: %s, hasOutdoorSeating: %s, isLuxury: %s!",
		echo(filter.IsVeg), echo(filter.HasOutdoorSeating), echo(filter.IsLuxury),
	))
}

// RestaurantsSortByRating handles GET /restaurants/sort-by-rating
func (h *Handlers) RestaurantsSortByRating(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.RestaurantsByRating(r.Context())
	h.respond(w, r, keyRestaurants, rows, err, "No restaurant found!")
}
