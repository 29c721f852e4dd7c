package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/julioborn/descuentos-sub000/internal/auth"
	"github.com/julioborn/descuentos-sub000/internal/db"
	"github.com/julioborn/descuentos-sub000/internal/models"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService    *auth.Service
	userCollection db.UserCollection
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService *auth.Service, userCollection db.UserCollection) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		userCollection: userCollection,
	}
}

// Login handles operator login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var loginReq models.LoginRequest
	if err := json.Unmarshal(body, &loginReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if loginReq.Username == "" || loginReq.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.authenticate(r.Context(), loginReq)
	if err != nil {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.authService.GenerateToken(user)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		http.Error(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	if err := h.userCollection.UpdateLastLogin(r.Context(), user.ID.Hex()); err != nil {
		log.WithError(err).WithField("username", user.Username).Warn("failed to update last login")
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         *user,
	})
}

// authenticate resolves the account and checks the password. Unknown accounts,
// deactivated accounts and wrong passwords all collapse onto
// auth.ErrInvalidCredentials so the response leaks nothing about which it was.
func (h *AuthHandler) authenticate(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	user, err := h.userCollection.FindUserByUsername(ctx, req.Username)
	if err != nil {
		return nil, auth.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, auth.ErrInvalidCredentials
	}
	if !h.authService.CheckPassword(req.Password, user.PasswordHash) {
		return nil, auth.ErrInvalidCredentials
	}
	return user, nil
}
