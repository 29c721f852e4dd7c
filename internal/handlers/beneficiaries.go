package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
	"github.com/julioborn/descuentos-sub000/internal/qr"
)

// BeneficiaryHandler serves the administrative beneficiary registry.
type BeneficiaryHandler struct {
	beneficiaries db.BeneficiaryCollection
	qrBaseURL     string
}

// NewBeneficiaryHandler creates a new beneficiary handler.
func NewBeneficiaryHandler(beneficiaries db.BeneficiaryCollection, qrBaseURL string) *BeneficiaryHandler {
	return &BeneficiaryHandler{beneficiaries: beneficiaries, qrBaseURL: qrBaseURL}
}

// Create handles POST /api/admin/beneficiarios: manual registration. The
// access token is generated here, exactly once for the lifetime of the record.
func (h *BeneficiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DNI          string             `json:"dni"`
		Name         string             `json:"nombre"`
		Phone        string             `json:"telefono"`
		Affiliation  models.Affiliation `json:"afiliacion"`
		Locality     string             `json:"localidad"`
		Institutions []string           `json:"establecimientos"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	dni, err := models.NormalizeDNI(req.DNI)
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if !models.IsValidAffiliation(req.Affiliation) {
		http.Error(w, "Invalid affiliation", http.StatusBadRequest)
		return
	}

	b := models.Beneficiary{
		DNI:          dni,
		Name:         req.Name,
		Phone:        req.Phone,
		Affiliation:  req.Affiliation,
		Locality:     req.Locality,
		Institutions: req.Institutions,
		Token:        uuid.NewString(),
		IsActive:     true,
	}
	if err := h.beneficiaries.InsertBeneficiary(r.Context(), b); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// List handles GET /api/admin/beneficiarios with optional afiliacion and
// localidad filters.
func (h *BeneficiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if a := r.URL.Query().Get("afiliacion"); a != "" {
		filter["afiliacion"] = a
	}
	if l := r.URL.Query().Get("localidad"); l != "" {
		filter["localidad"] = l
	}

	out, err := h.beneficiaries.FindBeneficiaries(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /api/admin/beneficiarios/{dni}
func (h *BeneficiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	dni, err := models.NormalizeDNI(chi.URLParam(r, "dni"))
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.beneficiaries.FindBeneficiaryByDNI(r.Context(), dni)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// UpdateContact handles PUT /api/admin/beneficiarios/{dni}: administrative
// edit of contact fields only.
func (h *BeneficiaryHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	dni, err := models.NormalizeDNI(chi.URLParam(r, "dni"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Phone    string `json:"telefono"`
		Locality string `json:"localidad"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.beneficiaries.UpdateContact(r.Context(), dni, req.Phone, req.Locality); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"dni": dni})
}

// SetActive handles PUT /api/admin/beneficiarios/{dni}/activo
func (h *BeneficiaryHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	dni, err := models.NormalizeDNI(chi.URLParam(r, "dni"))
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Active bool `json:"activo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.beneficiaries.SetActive(r.Context(), dni, req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"dni": dni, "activo": req.Active})
}

// CardQR handles GET /api/admin/beneficiarios/{dni}/qr: the printable card
// image. A consumed token is never revealed again, so the card can only be
// produced while consumption is pending.
func (h *BeneficiaryHandler) CardQR(w http.ResponseWriter, r *http.Request) {
	dni, err := models.NormalizeDNI(chi.URLParam(r, "dni"))
	if err != nil {
		writeError(w, err)
		return
	}

	b, err := h.beneficiaries.FindBeneficiaryByDNI(r.Context(), dni)
	if err != nil {
		writeError(w, err)
		return
	}
	if b.TokenConsumed {
		http.Error(w, "Token already consumed", http.StatusConflict)
		return
	}

	png, err := qr.CardPNG(h.qrBaseURL, b.Token, qr.DefaultSize)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
