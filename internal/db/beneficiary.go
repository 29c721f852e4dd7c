package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

// BeneficiaryCollection defines the interface for beneficiary database operations
type BeneficiaryCollection interface {
	InsertBeneficiary(ctx context.Context, b models.Beneficiary) error
	FindBeneficiaryByDNI(ctx context.Context, dni string) (*models.Beneficiary, error)
	FindBeneficiaryByToken(ctx context.Context, token string) (*models.Beneficiary, error)
	FindBeneficiaries(ctx context.Context, filter bson.M) ([]models.Beneficiary, error)
	ConsumeToken(ctx context.Context, dni string, at time.Time) (bool, error)
	AddInstitutions(ctx context.Context, dni string, institutions []string) error
	UpdateContact(ctx context.Context, dni string, phone, locality string) error
	SetActive(ctx context.Context, dni string, active bool) error
	CountByAffiliation(ctx context.Context) (map[models.Affiliation]int64, error)
	CountConsumed(ctx context.Context) (consumed int64, pending int64, err error)
}

// MongoBeneficiaryCollection implements BeneficiaryCollection for MongoDB
type MongoBeneficiaryCollection struct {
	Collection *mongo.Collection
}

// InsertBeneficiary inserts a new beneficiary. A unique-index conflict on the
// DNI is reported as ErrDuplicate so callers can fall back to updating the
// existing record.
func (c *MongoBeneficiaryCollection) InsertBeneficiary(ctx context.Context, b models.Beneficiary) error {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	_, err := c.Collection.InsertOne(ctx, b)
	return wrapInsertErr(err)
}

// FindBeneficiaryByDNI finds a beneficiary by national ID.
func (c *MongoBeneficiaryCollection) FindBeneficiaryByDNI(ctx context.Context, dni string) (*models.Beneficiary, error) {
	var b models.Beneficiary
	err := c.Collection.FindOne(ctx, bson.M{"dni": dni}).Decode(&b)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &b, nil
}

// FindBeneficiaryByToken finds a beneficiary by its access token.
func (c *MongoBeneficiaryCollection) FindBeneficiaryByToken(ctx context.Context, token string) (*models.Beneficiary, error) {
	var b models.Beneficiary
	err := c.Collection.FindOne(ctx, bson.M{"token": token}).Decode(&b)
	if err != nil {
		return nil, wrapFindErr(err)
	}
	return &b, nil
}

// FindBeneficiaries finds beneficiaries with optional filtering, ordered by name.
func (c *MongoBeneficiaryCollection) FindBeneficiaries(ctx context.Context, filter bson.M) ([]models.Beneficiary, error) {
	opts := options.Find().SetSort(bson.D{{Key: "nombre", Value: 1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.Beneficiary
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ConsumeToken marks the beneficiary's token consumed. The update is a single
// conditional write on consumed=false so two racing confirmations cannot both
// observe a first consumption. Returns true when this call performed the
// transition, false when the token was already consumed.
func (c *MongoBeneficiaryCollection) ConsumeToken(ctx context.Context, dni string, at time.Time) (bool, error) {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"dni": dni, "token_consumido": false},
		bson.M{"$set": bson.M{
			"token_consumido":    true,
			"token_consumido_at": at,
			"updated_at":         at,
		}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}

	// No match: either the beneficiary does not exist or the token was
	// consumed earlier. Distinguish the two for the caller.
	count, err := c.Collection.CountDocuments(ctx, bson.M{"dni": dni})
	if err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrNotFound
	}
	return false, nil
}

// AddInstitutions unions the given institutions into the beneficiary's list
// without duplicating existing entries and without touching other fields.
func (c *MongoBeneficiaryCollection) AddInstitutions(ctx context.Context, dni string, institutions []string) error {
	if len(institutions) == 0 {
		return nil
	}
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"dni": dni},
		bson.M{
			"$addToSet": bson.M{"establecimientos": bson.M{"$each": institutions}},
			"$set":      bson.M{"updated_at": time.Now()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateContact updates the administrative contact fields of a beneficiary.
func (c *MongoBeneficiaryCollection) UpdateContact(ctx context.Context, dni string, phone, locality string) error {
	set := bson.M{"updated_at": time.Now()}
	if phone != "" {
		set["telefono"] = phone
	}
	if locality != "" {
		set["localidad"] = locality
	}
	res, err := c.Collection.UpdateOne(ctx, bson.M{"dni": dni}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetActive toggles the active flag of a beneficiary.
func (c *MongoBeneficiaryCollection) SetActive(ctx context.Context, dni string, active bool) error {
	res, err := c.Collection.UpdateOne(
		ctx,
		bson.M{"dni": dni},
		bson.M{"$set": bson.M{"activo": active, "updated_at": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByAffiliation groups active beneficiaries by affiliation.
func (c *MongoBeneficiaryCollection) CountByAffiliation(ctx context.Context) (map[models.Affiliation]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"activo": true}}},
		{{Key: "$group", Value: bson.M{"_id": "$afiliacion", "total": bson.M{"$sum": 1}}}},
	}
	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Affiliation models.Affiliation `bson:"_id"`
		Total       int64              `bson:"total"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	out := make(map[models.Affiliation]int64, len(rows))
	for _, row := range rows {
		out[row.Affiliation] = row.Total
	}
	return out, nil
}

// CountConsumed counts beneficiaries whose token has and has not been consumed.
func (c *MongoBeneficiaryCollection) CountConsumed(ctx context.Context) (int64, int64, error) {
	consumed, err := c.Collection.CountDocuments(ctx, bson.M{"token_consumido": true})
	if err != nil {
		return 0, 0, err
	}
	pending, err := c.Collection.CountDocuments(ctx, bson.M{"token_consumido": false})
	if err != nil {
		return 0, 0, err
	}
	return consumed, pending, nil
}
