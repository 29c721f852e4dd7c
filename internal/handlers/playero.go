package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/issuance"
	"github.com/julioborn/descuentos-sub000/internal/middleware"
	"github.com/julioborn/descuentos-sub000/internal/models"
	"github.com/julioborn/descuentos-sub000/internal/pricing"
)

// PlayeroHandler serves the station attendant flow: QR-card eligibility
// lookup, token consumption and charge registration.
type PlayeroHandler struct {
	issuance      *issuance.Service
	beneficiaries db.BeneficiaryCollection
	discounts     db.DiscountCollection
	prices        db.PriceCollection
	charges       db.ChargeCollection
}

// NewPlayeroHandler creates a new attendant handler.
func NewPlayeroHandler(svc *issuance.Service, store *db.Store) *PlayeroHandler {
	return &PlayeroHandler{
		issuance:      svc,
		beneficiaries: store.Beneficiaries,
		discounts:     store.Discounts,
		prices:        store.Prices,
		charges:       store.Charges,
	}
}

// Lookup handles GET /api/playero/beneficiario?dni=&categoria= and its
// scanned-card form ?token=&categoria= (the QR payload carries the token).
func (h *PlayeroHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.URL.Query().Get("categoria"))

	var view *models.BeneficiaryView
	var err error
	if token := r.URL.Query().Get("token"); token != "" {
		view, err = h.issuance.LookupByToken(r.Context(), token, category)
	} else {
		view, err = h.issuance.Lookup(r.Context(), r.URL.Query().Get("dni"), category)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Consume handles POST /api/playero/consumir
func (h *PlayeroHandler) Consume(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DNI string `json:"dni"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.issuance.ConfirmConsumption(r.Context(), req.DNI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateCharge handles POST /api/playero/cargas: computes the discounted
// amount for a dispensation and appends the immutable charge record.
func (h *PlayeroHandler) CreateCharge(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DNI     string  `json:"dni"`
		Product string  `json:"producto"`
		Liters  float64 `json:"litros"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Product == "" {
		http.Error(w, "Product is required", http.StatusBadRequest)
		return
	}

	dni, err := models.NormalizeDNI(req.DNI)
	if err != nil {
		writeError(w, err)
		return
	}

	beneficiary, err := h.beneficiaries.FindBeneficiaryByDNI(r.Context(), dni)
	if err != nil {
		writeError(w, err)
		return
	}
	if !beneficiary.IsActive {
		writeError(w, issuance.ErrNotFound)
		return
	}

	price, err := h.prices.FindPriceByProduct(r.Context(), req.Product)
	if err != nil {
		writeError(w, err)
		return
	}

	// A missing discount record means full price, not an error.
	percent := 0.0
	discount, err := h.discounts.FindDiscountByAffiliation(r.Context(), beneficiary.Affiliation)
	if err == nil {
		percent = discount.Percent
	} else if !errors.Is(err, db.ErrNotFound) {
		writeError(w, err)
		return
	}

	computed, err := pricing.ComputeCharge(price.UnitPrice, req.Liters, percent)
	if err != nil {
		writeError(w, err)
		return
	}

	attendant := ""
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		attendant = claims.Username
	}

	charge := models.Charge{
		DNI:            beneficiary.DNI,
		Name:           beneficiary.Name,
		Affiliation:    beneficiary.Affiliation,
		Product:        price.Product,
		Liters:         req.Liters,
		Gross:          computed.Gross,
		DiscountAmount: computed.DiscountAmount,
		Net:            computed.Net,
		Percent:        percent,
		Currency:       price.Currency,
		Attendant:      attendant,
	}
	if err := h.charges.InsertCharge(r.Context(), charge); err != nil {
		writeError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"dni":      charge.DNI,
		"producto": charge.Product,
		"litros":   charge.Liters,
		"neto":     charge.Net,
	}).Info("charge registered")

	writeJSON(w, http.StatusCreated, charge)
}
