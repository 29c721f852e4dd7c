package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

// ChargeFilter narrows charge listings. Zero values mean "no filter".
type ChargeFilter struct {
	DNI     string
	Product string
	From    time.Time
	To      time.Time
}

// ProductTotal aggregates charges for one fuel product.
type ProductTotal struct {
	Product string  `bson:"_id" json:"producto"`
	Count   int64   `bson:"cantidad" json:"cantidad"`
	Liters  float64 `bson:"litros" json:"litros"`
	Net     float64 `bson:"neto" json:"neto"`
}

// AffiliationTotal aggregates charges for one affiliation.
type AffiliationTotal struct {
	Affiliation models.Affiliation `bson:"_id" json:"afiliacion"`
	Count       int64              `bson:"cantidad" json:"cantidad"`
	Liters      float64            `bson:"litros" json:"litros"`
	Net         float64            `bson:"neto" json:"neto"`
}

// ChargeCollection defines the interface for charge database operations
type ChargeCollection interface {
	InsertCharge(ctx context.Context, charge models.Charge) error
	FindCharges(ctx context.Context, filter ChargeFilter) ([]models.Charge, error)
	TotalsByProduct(ctx context.Context) ([]ProductTotal, error)
	TotalsByAffiliation(ctx context.Context) ([]AffiliationTotal, error)
}

// MongoChargeCollection implements ChargeCollection for MongoDB
type MongoChargeCollection struct {
	Collection *mongo.Collection
}

// InsertCharge appends a charge record. Records are never mutated afterwards.
func (c *MongoChargeCollection) InsertCharge(ctx context.Context, charge models.Charge) error {
	if charge.CreatedAt.IsZero() {
		charge.CreatedAt = time.Now()
	}
	_, err := c.Collection.InsertOne(ctx, charge)
	return err
}

// FindCharges lists charge records matching the filter, newest first.
func (c *MongoChargeCollection) FindCharges(ctx context.Context, filter ChargeFilter) ([]models.Charge, error) {
	query := bson.M{}
	if filter.DNI != "" {
		query["dni"] = filter.DNI
	}
	if filter.Product != "" {
		query["producto"] = filter.Product
	}
	dateRange := bson.M{}
	if !filter.From.IsZero() {
		dateRange["$gte"] = filter.From
	}
	if !filter.To.IsZero() {
		dateRange["$lte"] = filter.To
	}
	if len(dateRange) > 0 {
		query["fecha"] = dateRange
	}

	opts := options.Find().SetSort(bson.D{{Key: "fecha", Value: -1}})
	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Charge
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TotalsByProduct groups charges by product with count and liters/net sums.
func (c *MongoChargeCollection) TotalsByProduct(ctx context.Context) ([]ProductTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      "$producto",
			"cantidad": bson.M{"$sum": 1},
			"litros":   bson.M{"$sum": "$litros"},
			"neto":     bson.M{"$sum": "$neto"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []ProductTotal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TotalsByAffiliation groups charges by affiliation with count and sums.
func (c *MongoChargeCollection) TotalsByAffiliation(ctx context.Context) ([]AffiliationTotal, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":      "$afiliacion",
			"cantidad": bson.M{"$sum": 1},
			"litros":   bson.M{"$sum": "$litros"},
			"neto":     bson.M{"$sum": "$neto"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []AffiliationTotal
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
