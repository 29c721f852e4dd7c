package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Discount maps an affiliation to a discount percentage between 0 and 100,
// scoped by the operating region. At most one record exists per affiliation.
type Discount struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Affiliation Affiliation        `bson:"afiliacion" json:"afiliacion"`
	Percent     float64            `bson:"porcentaje" json:"porcentaje"`
	Region      string             `bson:"region,omitempty" json:"region,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}
