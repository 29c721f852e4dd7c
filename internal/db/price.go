package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

// PriceCollection defines the interface for price database operations
type PriceCollection interface {
	InsertPrice(ctx context.Context, p models.Price) error
	FindPriceByProduct(ctx context.Context, product string) (*models.Price, error)
	FindPrices(ctx context.Context) ([]models.Price, error)
	UpdatePrice(ctx context.Context, product string, unitPrice float64) error
	DeletePrice(ctx context.Context, product string) error
}

// MongoPriceCollection implements PriceCollection for MongoDB
type MongoPriceCollection struct {
	Collection *mongo.Collection
}

// InsertPrice inserts a price entry. Product names are unique; conflicts
// surface as ErrDuplicate.
func (c *MongoPriceCollection) InsertPrice(ctx context.Context, p models.Price) error {
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, p)
	return wrapInsertErr(err)
}

// FindPriceByProduct finds the price entry for a product.
func (c *MongoPriceCollection) FindPriceByProduct(ctx context.Context, product string) (*models.Price, error) {
	var p models.Price
	err := c.Collection.FindOne(ctx, bson.M{"producto": product}).Decode(&p)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &p, nil
}

// FindPrices lists all price entries.
func (c *MongoPriceCollection) FindPrices(ctx context.Context) ([]models.Price, error) {
	opts := options.Find().SetSort(bson.D{{Key: "producto", Value: 1}})
	cursor, err := c.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Price
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePrice updates the unit price of an existing product.
func (c *MongoPriceCollection) UpdatePrice(ctx context.Context, product string, unitPrice float64) error {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"producto": product},
		bson.M{"$set": bson.M{"precio": unitPrice, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePrice removes the price entry for a product.
func (c *MongoPriceCollection) DeletePrice(ctx context.Context, product string) error {
	res, err := c.Collection.DeleteOne(ctx, bson.M{"producto": product})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
