package auth

import (
	"errors"
	"net/http"

	"github.com/redmonkez12/go-tasks-api/internal/httputil"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

// Handler contains HTTP handlers for authentication endpoints
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest represents the token refresh request body
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// RefreshResponse carries the newly minted access token
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Register handles user registration
// @Summary      Register a new user
// @Description  Create a new user account and receive access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration credentials"
// @Success      201 {object} httputil.Envelope{data=AuthResult}
// @Failure      400 {object} httputil.Envelope "Validation failed"
// @Failure      409 {object} httputil.Envelope "Email already exists"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RegisterRequest
	if !httputil.Bind(w, r, &req, false) {
		return
	}

	result, err := h.service.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			logger.Warn("registration failed: email already exists")
			httputil.RespondErrorWithCode(w, "User with this email already exists", httputil.CodeConflict, http.StatusConflict)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondSuccess(w, "User registered successfully", result, http.StatusCreated)
}

// Login handles user login
// @Summary      User login
// @Description  Authenticate user and receive access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} httputil.Envelope{data=AuthResult}
// @Failure      400 {object} httputil.Envelope "Validation failed"
// @Failure      401 {object} httputil.Envelope "Invalid credentials"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req LoginRequest
	if !httputil.Bind(w, r, &req, false) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("login failed: invalid credentials")
			httputil.RespondErrorWithCode(w, "Invalid email or password", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}
		logger.Error("login failed: internal error", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	logger.Info("user logged in", "user_id", result.User.ID)

	httputil.RespondSuccess(w, "Login successful", result, http.StatusOK)
}

// Refresh handles access token refresh
// @Summary      Refresh access token
// @Description  Use a refresh token to get a new access token. The refresh token is not rotated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshRequest true "Refresh token"
// @Success      200 {object} httputil.Envelope{data=RefreshResponse}
// @Failure      400 {object} httputil.Envelope "Validation failed"
// @Failure      401 {object} httputil.Envelope "Invalid or expired refresh token"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /auth/refresh [post]
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	var req RefreshRequest
	if !httputil.Bind(w, r, &req, false) {
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			logger.Warn("token refresh failed: invalid or expired token")
			httputil.RespondErrorWithCode(w, "Invalid or expired refresh token", httputil.CodeUnauthorized, http.StatusUnauthorized)
			return
		}
		logger.Error("token refresh failed: internal error", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondSuccess(w, "Token refreshed successfully", RefreshResponse{AccessToken: accessToken}, http.StatusOK)
}

// Logout handles user logout
// @Summary      User logout
// @Description  Acknowledge logout. Tokens are stateless; clients discard them.
// @Tags         auth
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Logout(r.Context()); err != nil {
		logging.GetLoggerFromContext(r.Context()).Error("logout failed", "error", err.Error())
		httputil.RespondInternalError(w)
		return
	}

	httputil.RespondSuccess(w, "Logged out successfully", nil, http.StatusOK)
}
