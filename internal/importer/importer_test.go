package importer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

var errRegistryDown = errors.New("registry down")

// fakeRegistry implements the subset of db.BeneficiaryCollection the importer
// touches; failDNI injects a storage failure for one national ID.
type fakeRegistry struct {
	byDNI     map[string]*models.Beneficiary
	failDNI   string
	raceOnDNI string // InsertBeneficiary reports a conflict once for this DNI
	racedOnce bool
	inserted  int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{byDNI: make(map[string]*models.Beneficiary)}
}

func (r *fakeRegistry) InsertBeneficiary(ctx context.Context, b models.Beneficiary) error {
	if b.DNI == r.failDNI {
		return errRegistryDown
	}
	if b.DNI == r.raceOnDNI && !r.racedOnce {
		// Simulate a concurrent writer winning the insert.
		r.racedOnce = true
		r.byDNI[b.DNI] = &models.Beneficiary{DNI: b.DNI, Name: b.Name, Affiliation: b.Affiliation, Token: "earlier-token", IsActive: true}
		return db.ErrDuplicate
	}
	if _, ok := r.byDNI[b.DNI]; ok {
		return db.ErrDuplicate
	}
	copied := b
	r.byDNI[b.DNI] = &copied
	r.inserted++
	return nil
}

func (r *fakeRegistry) FindBeneficiaryByDNI(ctx context.Context, dni string) (*models.Beneficiary, error) {
	if dni == r.failDNI {
		return nil, errRegistryDown
	}
	b, ok := r.byDNI[dni]
	if !ok {
		return nil, db.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *fakeRegistry) AddInstitutions(ctx context.Context, dni string, institutions []string) error {
	b, ok := r.byDNI[dni]
	if !ok {
		return db.ErrNotFound
	}
	for _, inst := range institutions {
		exists := false
		for _, existing := range b.Institutions {
			if existing == inst {
				exists = true
				break
			}
		}
		if !exists {
			b.Institutions = append(b.Institutions, inst)
		}
	}
	return nil
}

func (r *fakeRegistry) FindBeneficiaryByToken(ctx context.Context, token string) (*models.Beneficiary, error) {
	return nil, db.ErrNotFound
}

func (r *fakeRegistry) FindBeneficiaries(ctx context.Context, filter bson.M) ([]models.Beneficiary, error) {
	return nil, nil
}

func (r *fakeRegistry) ConsumeToken(ctx context.Context, dni string, at time.Time) (bool, error) {
	return false, db.ErrNotFound
}

func (r *fakeRegistry) UpdateContact(ctx context.Context, dni string, phone, locality string) error {
	return nil
}

func (r *fakeRegistry) SetActive(ctx context.Context, dni string, active bool) error {
	return nil
}

func (r *fakeRegistry) CountByAffiliation(ctx context.Context) (map[models.Affiliation]int64, error) {
	return nil, nil
}

func (r *fakeRegistry) CountConsumed(ctx context.Context) (int64, int64, error) {
	return 0, 0, nil
}

func TestRun_CreatesNewBeneficiaries(t *testing.T) {
	registry := newFakeRegistry()
	imp := New(registry)

	rows := []Row{
		{DNI: "12345678", Name: "Ana Lopez", Locality: "Posadas"},
		{DNI: "23456789", Name: "Berta Diaz"},
	}
	result := imp.Run(context.Background(), rows, models.AffiliationMunicipales)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.AlreadyRegistered)
	assert.Equal(t, 0, result.Errored)
	require.Len(t, result.Cards, 2)
	assert.NotEmpty(t, result.Cards[0].Token)
	assert.NotEqual(t, result.Cards[0].Token, result.Cards[1].Token)

	b, err := registry.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, models.AffiliationMunicipales, b.Affiliation)
	assert.True(t, b.IsActive)
}

func TestRun_SkipsEmptyAndBatchDuplicates(t *testing.T) {
	registry := newFakeRegistry()
	imp := New(registry)

	rows := []Row{
		{DNI: "12345678", Name: "Ana Lopez"},
		{DNI: ""},
		{DNI: "12.345.678", Name: "Ana Lopez otra vez"},
	}
	result := imp.Run(context.Background(), rows, models.AffiliationPolicia)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 2, result.DuplicateInBatch)
	assert.Len(t, result.Cards, 1)
}

func TestRun_InvalidDNICountsAsError(t *testing.T) {
	registry := newFakeRegistry()
	imp := New(registry)

	rows := []Row{
		{DNI: "12AB5678", Name: "Rota"},
		{DNI: "12345678", Name: "Ana Lopez"},
	}
	result := imp.Run(context.Background(), rows, models.AffiliationPolicia)

	assert.Equal(t, 1, result.Errored)
	assert.Equal(t, 1, result.Created)
}

func TestRun_SecondRunIsIdempotent(t *testing.T) {
	registry := newFakeRegistry()
	imp := New(registry)

	rows := []Row{
		{DNI: "12345678", Name: "Ana Lopez", Institutions: []string{"Escuela 1", "Escuela 2"}},
		{DNI: "23456789", Name: "Berta Diaz", Institutions: []string{"Escuela 3"}},
	}

	first := imp.Run(context.Background(), rows, models.AffiliationDocentes)
	assert.Equal(t, 2, first.Created)

	second := imp.Run(context.Background(), rows, models.AffiliationDocentes)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.AlreadyRegistered)
	assert.Empty(t, second.Cards)

	// Institutions stay set-equal: the union added no duplicates.
	b, err := registry.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Escuela 1", "Escuela 2"}, b.Institutions)
}

func TestRun_DocentesUnionsInstitutions(t *testing.T) {
	registry := newFakeRegistry()
	registry.byDNI["12345678"] = &models.Beneficiary{
		DNI:          "12345678",
		Name:         "Ana Lopez",
		Affiliation:  models.AffiliationDocentes,
		Institutions: []string{"Escuela 1"},
		Token:        "existing-token",
		IsActive:     true,
	}
	imp := New(registry)

	rows := []Row{{DNI: "12345678", Name: "Ana Lopez", Institutions: []string{"Escuela 1", "Escuela 9"}}}
	result := imp.Run(context.Background(), rows, models.AffiliationDocentes)

	assert.Equal(t, 1, result.AlreadyRegistered)
	assert.Empty(t, result.Cards, "no card may be produced for an already-distributed token")

	b, err := registry.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Escuela 1", "Escuela 9"}, b.Institutions)
	assert.Equal(t, "existing-token", b.Token, "token must never be regenerated")
}

func TestRun_NonDocentesLeavesExistingUntouched(t *testing.T) {
	registry := newFakeRegistry()
	registry.byDNI["12345678"] = &models.Beneficiary{
		DNI:         "12345678",
		Name:        "Carlos Ruiz",
		Affiliation: models.AffiliationPolicia,
		Token:       "existing-token",
		IsActive:    true,
	}
	imp := New(registry)

	rows := []Row{{DNI: "12345678", Name: "Otro Nombre", Phone: "123"}}
	result := imp.Run(context.Background(), rows, models.AffiliationPolicia)

	assert.Equal(t, 1, result.AlreadyRegistered)

	b, err := registry.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "Carlos Ruiz", b.Name)
	assert.Empty(t, b.Phone)
}

func TestRun_InsertConflictFallsBackToUnion(t *testing.T) {
	registry := newFakeRegistry()
	registry.raceOnDNI = "12345678"
	imp := New(registry)

	rows := []Row{{DNI: "12345678", Name: "Ana Lopez", Institutions: []string{"Escuela 5"}}}
	result := imp.Run(context.Background(), rows, models.AffiliationDocentes)

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.AlreadyRegistered)
	assert.Equal(t, 0, result.Errored)
	assert.Empty(t, result.Cards)

	b, err := registry.FindBeneficiaryByDNI(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "earlier-token", b.Token)
	assert.ElementsMatch(t, []string{"Escuela 5"}, b.Institutions)
}

func TestRun_RowFailureDoesNotStopBatch(t *testing.T) {
	registry := newFakeRegistry()
	registry.failDNI = "33333333"
	imp := New(registry)

	rows := []Row{
		{DNI: "11111111", Name: "Uno"},
		{DNI: "22222222", Name: "Dos"},
		{DNI: "33333333", Name: "Tres"},
		{DNI: "44444444", Name: "Cuatro"},
		{DNI: "55555555", Name: "Cinco"},
	}
	result := imp.Run(context.Background(), rows, models.AffiliationMunicipales)

	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Errored)

	// Rows after the failing one were still processed.
	_, err := registry.FindBeneficiaryByDNI(context.Background(), "44444444")
	assert.NoError(t, err)
	_, err = registry.FindBeneficiaryByDNI(context.Background(), "55555555")
	assert.NoError(t, err)
}
