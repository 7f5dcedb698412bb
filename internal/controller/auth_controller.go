// internal/controller/auth_controller.go
package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/mkanyali/assetcomply-backend/internal/repository"
	"github.com/mkanyali/assetcomply-backend/internal/service"
)

type AuthController struct {
	AuthService *service.AuthService
	Settings    repository.AuthSettingsRepositoryInterface
	Log         *zap.SugaredLogger
}

// Register handles POST /api/auth/register, including the invite-token
// bypass when self-service registration is disabled.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := c.AuthService.Register(&req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	token, user, err := c.AuthService.Login(body.Email, body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": user})
}

// Config handles GET /api/auth/config: the unauthenticated frontend probe
// for which login paths are open. Falls back to everything-enabled when the
// settings cannot be read.
func (c *AuthController) Config(w http.ResponseWriter, r *http.Request) {
	settings, err := c.Settings.Get()
	if err != nil {
		c.Log.Warnw("failed to load auth settings", "err", err)
		writeJSON(w, http.StatusOK, map[string]bool{
			"registration_enabled":   true,
			"password_login_enabled": true,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{
		"registration_enabled":   settings.RegistrationEnabled,
		"password_login_enabled": settings.PasswordLoginEnabled,
	})
}
