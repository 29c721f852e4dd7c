package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julioborn/descuentos-sub000/internal/auth"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

func TestUserCreate(t *testing.T) {
	service, err := auth.NewService()
	require.NoError(t, err)

	users := &fakeUsers{byUsername: map[string]*models.User{}}
	h := NewUserHandler(service, users)

	body := `{"username":"playero1","password":"supersecret","role":"playero","region":"NEA","moneda":"ARS"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/usuarios", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")

	stored, ok := users.byUsername["playero1"]
	require.True(t, ok)
	assert.Equal(t, models.RolePlayero, stored.Role)
	assert.True(t, stored.IsActive)
	assert.True(t, service.CheckPassword("supersecret", stored.PasswordHash))
}

func TestUserCreate_Validation(t *testing.T) {
	service, err := auth.NewService()
	require.NoError(t, err)
	h := NewUserHandler(service, &fakeUsers{byUsername: map[string]*models.User{}})

	cases := []struct {
		name string
		body string
	}{
		{"short password", `{"username":"playero1","password":"short","role":"playero"}`},
		{"short username", `{"username":"ab","password":"supersecret","role":"playero"}`},
		{"unknown role", `{"username":"playero1","password":"supersecret","role":"gerente"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/usuarios", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.Create(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	service, err := auth.NewService()
	require.NoError(t, err)

	users := &fakeUsers{byUsername: map[string]*models.User{
		"playero1": {Username: "playero1", Role: models.RolePlayero, IsActive: true},
	}}
	h := NewUserHandler(service, users)

	body := `{"username":"playero1","password":"supersecret","role":"playero"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/usuarios", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}
