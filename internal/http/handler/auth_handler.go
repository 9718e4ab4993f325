package handler

import (
	"encoding/json"
	"net/http"

	"github.com/monterra-as/installer-api/internal/domain"
	"github.com/monterra-as/installer-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles HTTP requests for authentication and accounts
type AuthHandler struct {
	authService *service.AuthService
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(authService *service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login godoc
// @Summary Log in
// @Description Authenticate with username and password and receive a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} domain.LoginResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to log in")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// RegisterInstaller godoc
// @Summary Register an installer account
// @Description Create an installer account together with its onboarding service contract
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterInstallerRequest true "Registration details"
// @Success 201 {object} domain.RegisterInstallerResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Router /auth/register-installer [post]
func (h *AuthHandler) RegisterInstaller(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterInstallerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	resp, err := h.authService.RegisterInstaller(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to register installer")
		return
	}

	respondJSON(w, http.StatusCreated, resp)
}

// Me godoc
// @Summary Get current user
// @Description Get the authenticated user's profile
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.UserDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.GetCurrentUser(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to load profile")
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create a user
// @Description Create an account with an explicit role
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "User details"
// @Success 201 {object} domain.UserDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /users [post]
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.authService.CreateUser(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}
