package models

import (
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Affiliation identifies the partner organization a beneficiary belongs to.
type Affiliation string

const (
	AffiliationPolicia       Affiliation = "POLICIA"
	AffiliationPenitenciaria Affiliation = "PENITENCIARIA"
	AffiliationDocentes      Affiliation = "DOCENTES"
	AffiliationMunicipales   Affiliation = "MUNICIPALES"
	AffiliationSalud         Affiliation = "SALUD"
)

// IsValidAffiliation checks if an affiliation is one of the known organizations.
func IsValidAffiliation(a Affiliation) bool {
	switch a {
	case AffiliationPolicia, AffiliationPenitenciaria, AffiliationDocentes,
		AffiliationMunicipales, AffiliationSalud:
		return true
	default:
		return false
	}
}

// Category is the access category the attendant flow is invoked with.
// Each category maps to a closed set of affiliations it admits; CategoryGlobal
// admits every known affiliation.
type Category string

const (
	CategorySeguridad   Category = "seguridad"
	CategoryDocentes    Category = "docentes"
	CategoryMunicipales Category = "municipales"
	CategorySalud       Category = "salud"
	CategoryGlobal      Category = "global"
)

// IsValidCategory checks if a category is part of the closed set.
func IsValidCategory(c Category) bool {
	switch c {
	case CategorySeguridad, CategoryDocentes, CategoryMunicipales, CategorySalud, CategoryGlobal:
		return true
	default:
		return false
	}
}

// Allows reports whether the category admits the given affiliation.
func (c Category) Allows(a Affiliation) bool {
	switch c {
	case CategoryGlobal:
		return IsValidAffiliation(a)
	case CategorySeguridad:
		return a == AffiliationPolicia || a == AffiliationPenitenciaria
	case CategoryDocentes:
		return a == AffiliationDocentes
	case CategoryMunicipales:
		return a == AffiliationMunicipales
	case CategorySalud:
		return a == AffiliationSalud
	default:
		return false
	}
}

// ErrInvalidDNI indicates a national ID that does not normalize to 7-8 digits.
var ErrInvalidDNI = errors.New("invalid dni: must be 7 or 8 digits")

// NormalizeDNI strips separators commonly typed into DNI fields (spaces and
// dots) and validates the result is 7 or 8 digits.
func NormalizeDNI(dni string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '.' {
			return -1
		}
		return r
	}, strings.TrimSpace(dni))

	if len(cleaned) < 7 || len(cleaned) > 8 {
		return "", ErrInvalidDNI
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidDNI
		}
	}
	return cleaned, nil
}

// Beneficiary represents a person entitled to a fuel discount, identified by
// national ID (DNI). The access token is generated exactly once at creation
// and is never regenerated; once TokenConsumed is set the token must never be
// returned to any caller again.
type Beneficiary struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DNI           string             `bson:"dni" json:"dni"`
	Name          string             `bson:"nombre" json:"nombre"`
	Phone         string             `bson:"telefono,omitempty" json:"telefono,omitempty"`
	Affiliation   Affiliation        `bson:"afiliacion" json:"afiliacion"`
	Locality      string             `bson:"localidad,omitempty" json:"localidad,omitempty"`
	Institutions  []string           `bson:"establecimientos,omitempty" json:"establecimientos,omitempty"`
	Token         string             `bson:"token" json:"-"`
	TokenConsumed bool               `bson:"token_consumido" json:"token_consumido"`
	ConsumedAt    *time.Time         `bson:"token_consumido_at,omitempty" json:"token_consumido_at,omitempty"`
	IsActive      bool               `bson:"activo" json:"activo"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// BeneficiaryView is the public projection returned to the attendant flow.
// Token is populated only while the beneficiary has not consumed it.
type BeneficiaryView struct {
	DNI           string      `json:"dni"`
	Name          string      `json:"nombre"`
	Affiliation   Affiliation `json:"afiliacion"`
	Locality      string      `json:"localidad,omitempty"`
	TokenConsumed bool        `json:"token_consumido"`
	Token         string      `json:"token,omitempty"`
}

// View builds the public projection, withholding the token once consumed.
func (b *Beneficiary) View() BeneficiaryView {
	v := BeneficiaryView{
		DNI:           b.DNI,
		Name:          b.Name,
		Affiliation:   b.Affiliation,
		Locality:      b.Locality,
		TokenConsumed: b.TokenConsumed,
	}
	if !b.TokenConsumed {
		v.Token = b.Token
	}
	return v
}
