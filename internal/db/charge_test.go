package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

func setupCharges(t *testing.T) *MongoChargeCollection {
	t.Helper()

	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	collection := client.Database("test_descuentos").Collection("cargas")
	collection.Drop(context.Background())

	return &MongoChargeCollection{Collection: collection}
}

func testCharge(dni, product string, liters, net float64) models.Charge {
	return models.Charge{
		DNI:         dni,
		Name:        "Ana Lopez",
		Affiliation: models.AffiliationDocentes,
		Product:     product,
		Liters:      liters,
		Gross:       net,
		Net:         net,
		Currency:    "ARS",
	}
}

func TestMongoChargeCollection_InsertAndFilter(t *testing.T) {
	charges := setupCharges(t)

	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("12345678", "nafta", 10, 4500)))
	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("12345678", "gasoil", 20, 9000)))
	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("23456789", "nafta", 5, 2250)))

	all, err := charges.FindCharges(context.Background(), ChargeFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byDNI, err := charges.FindCharges(context.Background(), ChargeFilter{DNI: "12345678"})
	require.NoError(t, err)
	assert.Len(t, byDNI, 2)

	byProduct, err := charges.FindCharges(context.Background(), ChargeFilter{Product: "nafta"})
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	none, err := charges.FindCharges(context.Background(), ChargeFilter{From: time.Now().Add(time.Hour)})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMongoChargeCollection_Totals(t *testing.T) {
	charges := setupCharges(t)

	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("12345678", "nafta", 10, 4500)))
	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("23456789", "nafta", 5, 2250)))
	require.NoError(t, charges.InsertCharge(context.Background(), testCharge("12345678", "gasoil", 20, 9000)))

	byProduct, err := charges.TotalsByProduct(context.Background())
	require.NoError(t, err)
	require.Len(t, byProduct, 2)
	assert.Equal(t, "gasoil", byProduct[0].Product)
	assert.Equal(t, int64(1), byProduct[0].Count)
	assert.Equal(t, "nafta", byProduct[1].Product)
	assert.Equal(t, int64(2), byProduct[1].Count)
	assert.Equal(t, 15.0, byProduct[1].Liters)
	assert.Equal(t, 6750.0, byProduct[1].Net)

	byAffiliation, err := charges.TotalsByAffiliation(context.Background())
	require.NoError(t, err)
	require.Len(t, byAffiliation, 1)
	assert.Equal(t, models.AffiliationDocentes, byAffiliation[0].Affiliation)
	assert.Equal(t, int64(3), byAffiliation[0].Count)
}
