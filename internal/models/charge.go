package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Charge is an immutable log entry of one fuel dispensation. Beneficiary
// identity is snapshotted by value so later edits to the beneficiary do not
// retroactively alter historical charges.
type Charge struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DNI            string             `bson:"dni" json:"dni"`
	Name           string             `bson:"nombre" json:"nombre"`
	Affiliation    Affiliation        `bson:"afiliacion" json:"afiliacion"`
	Product        string             `bson:"producto" json:"producto"`
	Liters         float64            `bson:"litros" json:"litros"`
	Gross          float64            `bson:"bruto" json:"bruto"`
	DiscountAmount float64            `bson:"descuento" json:"descuento"`
	Net            float64            `bson:"neto" json:"neto"`
	Percent        float64            `bson:"porcentaje" json:"porcentaje"`
	Currency       string             `bson:"moneda" json:"moneda"`
	Attendant      string             `bson:"playero,omitempty" json:"playero,omitempty"`
	CreatedAt      time.Time          `bson:"fecha" json:"fecha"`
}
