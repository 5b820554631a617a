package handlers

import "net/http"

// ListDishes handles GET /dishes
func (h *Handlers) ListDishes(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.ListDishes(r.Context())
	h.respond(w, r, keyDishes, rows, err, "No dishes found!")
}

// DishDetails handles GET /dishes/details/{id}
func (h *Handlers) DishDetails(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	rows, err := h.store.DishesByID(r.Context(), id)
	h.respond(w, r, keyDishes, rows, err, "No dish found of id: "+id)
}

// DishesByFilter handles GET /dishes/filter?isVeg=
func (h *Handlers) DishesByFilter(w http.ResponseWriter, r *http.Request) {
	isVeg := queryParam(r, "isVeg")
	rows, err := h.store.DishesByFilter(r.Context(), isVeg)
	h.respond(w, r, keyDishes, rows, err, "No dish found by isVeg: "+echo(isVeg))
}

// DishesSortByPrice handles GET /dishes/sort-by-price
func (h *Handlers) DishesSortByPrice(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.DishesByPrice(r.Context())
	h.respond(w, r, keyDishes, rows, err, "No dish found!")
}
