package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// DiscountHandler serves the administrative discount ledger.
type DiscountHandler struct {
	discounts db.DiscountCollection
}

// NewDiscountHandler creates a new discount handler.
func NewDiscountHandler(discounts db.DiscountCollection) *DiscountHandler {
	return &DiscountHandler{discounts: discounts}
}

// Create handles POST /api/admin/descuentos
func (h *DiscountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Affiliation models.Affiliation `json:"afiliacion"`
		Percent     float64            `json:"porcentaje"`
		Region      string             `json:"region"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if !models.IsValidAffiliation(req.Affiliation) {
		http.Error(w, "Invalid affiliation", http.StatusBadRequest)
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		http.Error(w, "Percent must be between 0 and 100", http.StatusBadRequest)
		return
	}

	d := models.Discount{
		Affiliation: req.Affiliation,
		Percent:     req.Percent,
		Region:      req.Region,
	}
	if err := h.discounts.InsertDiscount(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// List handles GET /api/admin/descuentos
func (h *DiscountHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.discounts.FindDiscounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Update handles PUT /api/admin/descuentos/{afiliacion}
func (h *DiscountHandler) Update(w http.ResponseWriter, r *http.Request) {
	affiliation := models.Affiliation(chi.URLParam(r, "afiliacion"))
	if !models.IsValidAffiliation(affiliation) {
		http.Error(w, "Invalid affiliation", http.StatusBadRequest)
		return
	}

	var req struct {
		Percent float64 `json:"porcentaje"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Percent < 0 || req.Percent > 100 {
		http.Error(w, "Percent must be between 0 and 100", http.StatusBadRequest)
		return
	}

	if err := h.discounts.UpdateDiscountPercent(r.Context(), affiliation, req.Percent); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"afiliacion": affiliation, "porcentaje": req.Percent})
}

// Delete handles DELETE /api/admin/descuentos/{afiliacion}
func (h *DiscountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	affiliation := models.Affiliation(chi.URLParam(r, "afiliacion"))
	if !models.IsValidAffiliation(affiliation) {
		http.Error(w, "Invalid affiliation", http.StatusBadRequest)
		return
	}

	if err := h.discounts.DeleteDiscount(r.Context(), affiliation); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
