// Package importer reconciles spreadsheet rows against the beneficiary
// registry: new national IDs are registered with a fresh access token, known
// ones are left untouched (docentes rows additionally union their associated
// institutions into the existing record).
package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// Row is one decoded spreadsheet row.
type Row struct {
	DNI          string
	Name         string
	Phone        string
	Locality     string
	Institutions []string
}

// Card is the identity artifact produced for a newly created beneficiary. It
// references the freshly generated access token; cards are never produced for
// pre-existing beneficiaries whose token may already have been distributed.
type Card struct {
	DNI   string `json:"dni"`
	Name  string `json:"nombre"`
	Token string `json:"token"`
}

// Result summarizes one import run.
type Result struct {
	Created           int    `json:"creados"`
	DuplicateInBatch  int    `json:"duplicados_en_lote"`
	AlreadyRegistered int    `json:"ya_registrados"`
	Errored           int    `json:"con_error"`
	Cards             []Card `json:"tarjetas,omitempty"`
}

// Importer runs spreadsheet reconciliation against the registry.
type Importer struct {
	beneficiaries db.BeneficiaryCollection
}

// New creates an importer over the beneficiary registry.
func New(beneficiaries db.BeneficiaryCollection) *Importer {
	return &Importer{beneficiaries: beneficiaries}
}

// Run processes rows strictly in input order and reconciles each against the
// registry under the target affiliation. Institutions are unioned into
// existing records only for the docentes affiliation. A failing row is counted
// and processing continues with the next one; the dedup set is local to this
// run.
func (i *Importer) Run(ctx context.Context, rows []Row, affiliation models.Affiliation) Result {
	var result Result
	seen := make(map[string]struct{}, len(rows))

	for n, row := range rows {
		if row.DNI == "" {
			// Empty IDs are skipped, counted with the in-batch duplicates.
			result.DuplicateInBatch++
			continue
		}
		dni, err := models.NormalizeDNI(row.DNI)
		if err != nil {
			log.WithField("fila", n+1).WithField("dni", row.DNI).Warn("import row with invalid dni")
			result.Errored++
			continue
		}
		if _, ok := seen[dni]; ok {
			result.DuplicateInBatch++
			continue
		}
		seen[dni] = struct{}{}

		existing, err := i.beneficiaries.FindBeneficiaryByDNI(ctx, dni)
		switch {
		case err == nil:
			if err := i.reconcileExisting(ctx, existing, row, affiliation); err != nil {
				log.WithError(err).WithField("dni", dni).Error("import row update failed")
				result.Errored++
				continue
			}
			result.AlreadyRegistered++
		case errors.Is(err, db.ErrNotFound):
			card, err := i.create(ctx, dni, row, affiliation)
			if err != nil {
				log.WithError(err).WithField("dni", dni).Error("import row insert failed")
				result.Errored++
				continue
			}
			if card != nil {
				result.Cards = append(result.Cards, *card)
				result.Created++
			} else {
				// Lost the insert race to a concurrent run; treated the
				// same as finding the record registered up front.
				result.AlreadyRegistered++
			}
		default:
			log.WithError(err).WithField("dni", dni).Error("import row lookup failed")
			result.Errored++
		}
	}

	return result
}

// reconcileExisting leaves the registered beneficiary untouched except for the
// docentes institutions union.
func (i *Importer) reconcileExisting(ctx context.Context, existing *models.Beneficiary, row Row, affiliation models.Affiliation) error {
	if affiliation != models.AffiliationDocentes || len(row.Institutions) == 0 {
		return nil
	}
	return i.beneficiaries.AddInstitutions(ctx, existing.DNI, row.Institutions)
}

// create registers a new beneficiary with a freshly generated token. An insert
// conflict means another writer registered the same DNI first; the row falls
// back to the union path and no card is produced.
func (i *Importer) create(ctx context.Context, dni string, row Row, affiliation models.Affiliation) (*Card, error) {
	b := models.Beneficiary{
		DNI:         dni,
		Name:        row.Name,
		Phone:       row.Phone,
		Affiliation: affiliation,
		Locality:    row.Locality,
		Token:       uuid.NewString(),
		IsActive:    true,
	}
	if affiliation == models.AffiliationDocentes {
		b.Institutions = row.Institutions
	}

	err := i.beneficiaries.InsertBeneficiary(ctx, b)
	if err == nil {
		return &Card{DNI: b.DNI, Name: b.Name, Token: b.Token}, nil
	}
	if !errors.Is(err, db.ErrDuplicate) {
		return nil, err
	}

	if affiliation == models.AffiliationDocentes && len(row.Institutions) > 0 {
		if err := i.beneficiaries.AddInstitutions(ctx, dni, row.Institutions); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
