package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// PriceHandler serves the administrative price list.
type PriceHandler struct {
	prices db.PriceCollection
}

// NewPriceHandler creates a new price handler.
func NewPriceHandler(prices db.PriceCollection) *PriceHandler {
	return &PriceHandler{prices: prices}
}

// Create handles POST /api/admin/precios
func (h *PriceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Product   string  `json:"producto"`
		UnitPrice float64 `json:"precio"`
		Currency  string  `json:"moneda"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Product == "" {
		http.Error(w, "Product is required", http.StatusBadRequest)
		return
	}
	if req.UnitPrice < 0 {
		http.Error(w, "Price must be non-negative", http.StatusBadRequest)
		return
	}
	if req.Currency == "" {
		req.Currency = "ARS"
	}

	p := models.Price{
		Product:   req.Product,
		UnitPrice: req.UnitPrice,
		Currency:  req.Currency,
	}
	if err := h.prices.InsertPrice(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /api/admin/precios
func (h *PriceHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.prices.FindPrices(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /api/admin/precios/{producto}
func (h *PriceHandler) Update(w http.ResponseWriter, r *http.Request) {
	product := chi.URLParam(r, "producto")

	var req struct {
		UnitPrice float64 `json:"precio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.UnitPrice < 0 {
		http.Error(w, "Price must be non-negative", http.StatusBadRequest)
		return
	}

	if err := h.prices.UpdatePrice(r.Context(), product, req.UnitPrice); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"producto": product, "precio": req.UnitPrice})
}

// Delete handles DELETE /api/admin/precios/{producto}
func (h *PriceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product := chi.URLParam(r, "producto")

	if err := h.prices.DeletePrice(r.Context(), product); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
