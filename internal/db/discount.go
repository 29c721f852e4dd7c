package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

// DiscountCollection defines the interface for discount database operations
type DiscountCollection interface {
	InsertDiscount(ctx context.Context, d models.Discount) error
	FindDiscountByAffiliation(ctx context.Context, a models.Affiliation) (*models.Discount, error)
	FindDiscounts(ctx context.Context) ([]models.Discount, error)
	UpdateDiscountPercent(ctx context.Context, a models.Affiliation, percent float64) error
	DeleteDiscount(ctx context.Context, a models.Affiliation) error
}

// MongoDiscountCollection implements DiscountCollection for MongoDB
type MongoDiscountCollection struct {
	Collection *mongo.Collection
}

// InsertDiscount inserts a discount record. At most one record may exist per
// affiliation; conflicts surface as ErrDuplicate.
func (c *MongoDiscountCollection) InsertDiscount(ctx context.Context, d models.Discount) error {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, d)
	return wrapInsertErr(err)
}

// FindDiscountByAffiliation finds the discount record for an affiliation.
func (c *MongoDiscountCollection) FindDiscountByAffiliation(ctx context.Context, a models.Affiliation) (*models.Discount, error) {
	var d models.Discount
	err := c.Collection.FindOne(ctx, bson.M{"afiliacion": a}).Decode(&d)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &d, nil
}

// FindDiscounts lists all discount records.
func (c *MongoDiscountCollection) FindDiscounts(ctx context.Context) ([]models.Discount, error) {
	opts := options.Find().SetSort(bson.D{{Key: "afiliacion", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Discount
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateDiscountPercent updates the percentage of an existing record.
func (c *MongoDiscountCollection) UpdateDiscountPercent(ctx context.Context, a models.Affiliation, percent float64) error {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"afiliacion": a},
		bson.M{"$set": bson.M{"porcentaje": percent, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDiscount removes the discount record for an affiliation.
func (c *MongoDiscountCollection) DeleteDiscount(ctx context.Context, a models.Affiliation) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"afiliacion": a})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
