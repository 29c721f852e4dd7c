// Package issuance implements the QR-card eligibility lookup and the one-way
// consumption of the single-use access token.
package issuance

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

var (
	// ErrInvalidInput indicates a national ID that does not normalize to 7-8 digits.
	ErrInvalidInput = errors.New("invalid national id")
	// ErrInvalidCategory indicates an access category outside the closed set.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNotFound indicates the beneficiary is absent or inactive.
	ErrNotFound = errors.New("beneficiary not registered")
	// ErrForbidden indicates the beneficiary exists but its affiliation is not
	// admitted by the requested category.
	ErrForbidden = errors.New("beneficiary not eligible for category")
	// ErrStorageUnavailable hides any underlying store failure from callers.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ConsumeResult reports the outcome of a consumption confirmation.
type ConsumeResult struct {
	AlreadyConsumed bool       `json:"ya_consumido"`
	ConsumedAt      *time.Time `json:"consumido_at,omitempty"`
}

// Service validates eligibility and drives the single-use token transition.
type Service struct {
	beneficiaries db.BeneficiaryCollection
}

// NewService creates an issuance service over the beneficiary registry.
func NewService(beneficiaries db.BeneficiaryCollection) *Service {
	return &Service{beneficiaries: beneficiaries}
}

// Lookup validates the national ID and category, finds the active beneficiary
// and returns its public view. The access token is included only while it has
// not been consumed; a consumed token is never revealed again.
func (s *Service) Lookup(ctx context.Context, nationalID string, category models.Category) (*models.BeneficiaryView, error) {
	dni, err := models.NormalizeDNI(nationalID)
	if err != nil {
		return nil, ErrInvalidInput
	}
	if !models.IsValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	b, err := s.beneficiaries.FindBeneficiaryByDNI(ctx, dni)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		log.WithError(err).WithField("dni", dni).Error("beneficiary lookup failed")
		return nil, ErrStorageUnavailable
	}
	return s.eligibleView(b, category)
}

// LookupByToken resolves a scanned card: the QR payload carries the access
// token, not the DNI. Eligibility rules and token withholding are the same as
// for Lookup.
func (s *Service) LookupByToken(ctx context.Context, token string, category models.Category) (*models.BeneficiaryView, error) {
	if token == "" {
		return nil, ErrInvalidInput
	}
	if !models.IsValidCategory(category) {
		return nil, ErrInvalidCategory
	}

	b, err := s.beneficiaries.FindBeneficiaryByToken(ctx, token)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		log.WithError(err).Error("beneficiary token lookup failed")
		return nil, ErrStorageUnavailable
	}
	return s.eligibleView(b, category)
}

func (s *Service) eligibleView(b *models.Beneficiary, category models.Category) (*models.BeneficiaryView, error) {
	if !b.IsActive {
		return nil, ErrNotFound
	}
	if !category.Allows(b.Affiliation) {
		return nil, ErrForbidden
	}

	view := b.View()
	return &view, nil
}

// ConfirmConsumption marks the beneficiary's token consumed. The transition is
// one-way and idempotent: the first call consumes, later calls report
// AlreadyConsumed without changing the stored timestamp. It does not require a
// prior Lookup.
func (s *Service) ConfirmConsumption(ctx context.Context, nationalID string) (*ConsumeResult, error) {
	dni, err := models.NormalizeDNI(nationalID)
	if err != nil {
		return nil, ErrInvalidInput
	}

	now := time.Now()
	consumed, err := s.beneficiaries.ConsumeToken(ctx, dni, now)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNotFound
		}
		log.WithError(err).WithField("dni", dni).Error("token consumption failed")
		return nil, ErrStorageUnavailable
	}

	if consumed {
		log.WithField("dni", dni).Info("access token consumed")
		return &ConsumeResult{AlreadyConsumed: false, ConsumedAt: &now}, nil
	}
	return &ConsumeResult{AlreadyConsumed: true}, nil
}
