// internal/api/handler/auth.go
package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pocketcash-wallet/internal/domain"
	"pocketcash-wallet/internal/service"
	"pocketcash-wallet/internal/util"
)

// AuthHandler handles registration, sessions and profile requests.
type AuthHandler struct {
	responder
	service service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{responder: responder{logger: logger}, service: svc}
}

// RegisterRequest represents the request body for registration.
type RegisterRequest struct {
	Name         string      `json:"name"`
	PhotoURL     string      `json:"photo_url"`
	Email        string      `json:"email"`
	MobileNumber string      `json:"mobile_number"`
	PIN          string      `json:"pin"`
	UserType     domain.Role `json:"user_type"`
}

// Register creates a pending account.
// POST /userRegister
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if req.UserType == domain.RoleAdmin {
		h.respondWithError(w, fmt.Errorf("%w: admin accounts cannot be self-registered", util.ErrInvalidInput))
		return
	}

	user, err := h.service.Register(r.Context(), domain.Registration{
		Name:         req.Name,
		PhotoURL:     req.PhotoURL,
		Email:        req.Email,
		MobileNumber: req.MobileNumber,
		PIN:          req.PIN,
		Role:         req.UserType,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, map[string]any{
		"message":    "Registration successful",
		"insertedId": user.ID,
		"user":       user.View(),
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	EmailOrMobile string `json:"email_or_mobile"`
	PIN           string `json:"pin"`
}

// Login verifies credentials and issues a bearer token.
// POST /userLogin
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), req.EmailOrMobile, req.PIN)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]any{
		"token":      result.Token,
		"expires_at": result.ExpiresAt.UTC().Format(time.RFC3339),
		"user":       result.User.View(),
	})
}

// UserCheck resolves the account behind a token passed in the body.
// POST /userCheck
func (h *AuthHandler) UserCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}
	if strings.TrimSpace(req.Token) == "" {
		h.respondWithError(w, util.ErrUnauthenticated)
		return
	}

	user, err := h.service.CheckSession(r.Context(), req.Token)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]any{"user": user.View()})
}

// Logout is a no-op for stateless tokens; clients discard their token.
// POST /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetUserByEmail reports whether an account exists and returns its public view.
// GET /users/{email}
func (h *AuthHandler) GetUserByEmail(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	found, user, err := h.service.VerifyUser(r.Context(), caller, chi.URLParam(r, "email"))
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	body := map[string]any{"verifyUser": found, "user": nil}
	if found {
		body["user"] = user.View()
	}
	h.respondWithJSON(w, http.StatusOK, body)
}

// ProfileUpdateRequest represents the request body for a profile update.
type ProfileUpdateRequest struct {
	Name     *string `json:"name"`
	PhotoURL *string `json:"photo_url"`
}

// UpdateProfile changes the caller's name and/or photo.
// POST /profile-update
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req ProfileUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), caller, service.ProfileUpdate{Name: req.Name, PhotoURL: req.PhotoURL})
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]any{"user": user.View()})
}

// ProfilePhotoURL issues a presigned upload URL for the caller's avatar.
// POST /profile-photo-url
func (h *AuthHandler) ProfilePhotoURL(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	var req struct {
		ContentType string `json:"content_type"`
	}
	if err := decodeJSON(r, &req); err != nil {
		h.respondWithError(w, err)
		return
	}

	upload, err := h.service.PresignAvatarUpload(r.Context(), caller, req.ContentType)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	h.respondWithJSON(w, http.StatusOK, upload)
}
