package handlers

import (
	"net/http"
	"time"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// ChargeHandler serves the administrative charge log and statistics.
type ChargeHandler struct {
	charges       db.ChargeCollection
	beneficiaries db.BeneficiaryCollection
}

// NewChargeHandler creates a new charge handler.
func NewChargeHandler(charges db.ChargeCollection, beneficiaries db.BeneficiaryCollection) *ChargeHandler {
	return &ChargeHandler{charges: charges, beneficiaries: beneficiaries}
}

// List handles GET /api/admin/cargas with optional dni, producto, desde and
// hasta (RFC 3339) filters.
func (h *ChargeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := db.ChargeFilter{
		Product: r.URL.Query().Get("producto"),
	}
	if dni := r.URL.Query().Get("dni"); dni != "" {
		normalized, err := models.NormalizeDNI(dni)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.DNI = normalized
	}
	if from := r.URL.Query().Get("desde"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			http.Error(w, "Invalid desde date", http.StatusBadRequest)
			return
		}
		filter.From = t
	}
	if to := r.URL.Query().Get("hasta"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			http.Error(w, "Invalid hasta date", http.StatusBadRequest)
			return
		}
		filter.To = t
	}

	out, err := h.charges.FindCharges(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Stats handles GET /api/admin/estadisticas: charge totals per product and
// affiliation plus registry counters.
func (h *ChargeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	byProduct, err := h.charges.TotalsByProduct(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	byAffiliation, err := h.charges.TotalsByAffiliation(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	beneficiaries, err := h.beneficiaries.CountByAffiliation(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	consumed, pending, err := h.beneficiaries.CountConsumed(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"cargas_por_producto":   byProduct,
		"cargas_por_afiliacion": byAffiliation,
		"beneficiarios_activos": beneficiaries,
		"tokens_consumidos":     consumed,
		"tokens_pendientes":     pending,
	})
}
