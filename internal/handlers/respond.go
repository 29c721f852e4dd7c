package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/issuance"
	"github.com/julioborn/descuentos-sub000/internal/models"
	"github.com/julioborn/descuentos-sub000/internal/pricing"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain errors onto HTTP statuses. Storage failures collapse
// onto a generic 500 so callers cannot tell infrastructure problems apart from
// anything but the intentionally visible business outcomes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, issuance.ErrInvalidInput),
		errors.Is(err, models.ErrInvalidDNI),
		errors.Is(err, pricing.ErrInvalidInput):
		http.Error(w, "Invalid input", http.StatusBadRequest)
	case errors.Is(err, issuance.ErrInvalidCategory):
		http.Error(w, "Invalid category", http.StatusBadRequest)
	case errors.Is(err, issuance.ErrNotFound), errors.Is(err, db.ErrNotFound):
		http.Error(w, "Not registered", http.StatusNotFound)
	case errors.Is(err, issuance.ErrForbidden):
		http.Error(w, "Not eligible", http.StatusForbidden)
	case errors.Is(err, db.ErrDuplicate):
		http.Error(w, "Already exists", http.StatusConflict)
	default:
		log.WithError(err).Error("request failed")
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
