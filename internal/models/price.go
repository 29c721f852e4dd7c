package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Price maps a fuel product to its unit price per liter, tagged with the
// currency it is expressed in. Product names are unique.
type Price struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Product   string             `bson:"producto" json:"producto"`
	UnitPrice float64            `bson:"precio" json:"precio"`
	Currency  string             `bson:"moneda" json:"moneda"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
