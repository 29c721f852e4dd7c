package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julioborn/descuentos-sub000/internal/models"
)

func setupBeneficiaries(t *testing.T) *MongoBeneficiaryCollection {
	t.Helper()

	client, err := ConnectMongo()
	if err != nil {
		t.Skipf("failed to create client: %v, skipping integration test", err)
	}
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	database := client.Database("test_descuentos")
	collection := database.Collection("beneficiarios")
	collection.Drop(context.Background())
	require.NoError(t, EnsureIndexes(context.Background(), database))

	return &MongoBeneficiaryCollection{Collection: collection}
}

func testBeneficiary(dni, token string) models.Beneficiary {
	return models.Beneficiary{
		DNI:         dni,
		Name:        "Ana Lopez",
		Affiliation: models.AffiliationDocentes,
		Locality:    "Posadas",
		Token:       token,
		IsActive:    true,
	}
}

func TestMongoBeneficiaryCollection_InsertAndFind(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	err := beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-1"))
	assert.NoError(t, err)

	found, err := beneficiaries.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Ana Lopez", found.Name)
	assert.False(t, found.TokenConsumed)
	assert.NotZero(t, found.CreatedAt)

	_, err = beneficiaries.FindBeneficiaryByDNI(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoBeneficiaryCollection_DuplicateInsert(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-1")))

	err := beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-2"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestMongoBeneficiaryCollection_FindByToken(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-1")))

	found, err := beneficiaries.FindBeneficiaryByToken(context.Background(), "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "12345678", found.DNI)

	_, err = beneficiaries.FindBeneficiaryByToken(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoBeneficiaryCollection_ConsumeToken(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-1")))

	first := time.Now()
	consumed, err := beneficiaries.ConsumeToken(context.Background(), "12345678", first)
	require.NoError(t, err)
	assert.True(t, consumed)

	// Second confirmation is a no-op and must not move the timestamp.
	consumed, err = beneficiaries.ConsumeToken(context.Background(), "12345678", time.Now())
	require.NoError(t, err)
	assert.False(t, consumed)

	found, err := beneficiaries.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.True(t, found.TokenConsumed)
	require.NotNil(t, found.ConsumedAt)
	assert.WithinDuration(t, first, *found.ConsumedAt, time.Second)

	_, err = beneficiaries.ConsumeToken(context.Background(), "99999999", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoBeneficiaryCollection_AddInstitutions(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	b := testBeneficiary("12345678", "tok-1")
	b.Institutions = []string{"Escuela 1"}
	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), b))

	err := beneficiaries.AddInstitutions(context.Background(), "12345678", []string{"Escuela 1", "Escuela 2"})
	require.NoError(t, err)

	found, err := beneficiaries.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Escuela 1", "Escuela 2"}, found.Institutions)

	err = beneficiaries.AddInstitutions(context.Background(), "99999999", []string{"Escuela 3"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoBeneficiaryCollection_UpdateContact(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("12345678", "tok-1")))

	err := beneficiaries.UpdateContact(context.Background(), "12345678", "3764000001", "Obera")
	require.NoError(t, err)

	found, err := beneficiaries.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "3764000001", found.Phone)
	assert.Equal(t, "Obera", found.Locality)
	// The consume flag is untouched by contact edits.
	assert.False(t, found.TokenConsumed)
}

func TestMongoBeneficiaryCollection_Counts(t *testing.T) {
	beneficiaries := setupBeneficiaries(t)

	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), testBeneficiary("11111111", "tok-1")))
	b := testBeneficiary("22222222", "tok-2")
	b.Affiliation = models.AffiliationPolicia
	require.NoError(t, beneficiaries.InsertBeneficiary(context.Background(), b))

	_, err := beneficiaries.ConsumeToken(context.Background(), "11111111", time.Now())
	require.NoError(t, err)

	byAffiliation, err := beneficiaries.CountByAffiliation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), byAffiliation[models.AffiliationDocentes])
	assert.Equal(t, int64(1), byAffiliation[models.AffiliationPolicia])

	consumed, pending, err := beneficiaries.CountConsumed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), consumed)
	assert.Equal(t, int64(1), pending)
}
