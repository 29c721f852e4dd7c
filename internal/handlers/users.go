package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julioborn/descuentos-sub000/internal/auth"
	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// UserHandler serves operator account provisioning. Accounts are created by
// administrators only; there is no self-service registration.
type UserHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authService *auth.Service, userCollection db.UserCollection) *UserHandler {
	return &UserHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Create handles POST /api/admin/usuarios
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string      `json:"username"`
		Password string      `json:"password"`
		Role     models.Role `json:"role"`
		Region   string      `json:"region"`
		Currency string      `json:"moneda"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if err := h.authService.ValidateUsername(req.Username); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.authService.ValidatePassword(req.Password); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.IsValidRole(req.Role) {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}

	hash, err := h.authService.HashPassword(req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         req.Role,
		Region:       req.Region,
		Currency:     req.Currency,
		IsActive:     true,
	}
	if err := h.userCollection.InsertUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	user.PasswordHash = ""
	writeJSON(w, http.StatusCreated, user)
}
