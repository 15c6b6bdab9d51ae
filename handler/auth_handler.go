package handler

import (
	"encoding/json"
	"errors"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/service"
	"net/http"
)

// AuthHandler holds dependencies for the authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	refreshService *service.RefreshService
	limiter        *service.RateLimiterService
}

// NewAuthHandler creates a new AuthHandler with its dependencies.
func NewAuthHandler(authService *service.AuthService, refreshService *service.RefreshService, limiter *service.RateLimiterService) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		refreshService: refreshService,
		limiter:        limiter,
	}
}

// Register godoc
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        account body model.RegisterRequest true "New account details"
// @Success      201  {object}  model.User
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      409  {object}  common.AppError "Username already taken"
// @Failure      500  {object}  common.AppError
// @Router       /auth/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	user, err := h.authService.Register(req)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			return common.NewAppError(http.StatusConflict, err.Error(), err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not create user", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
	return nil
}

// Login godoc
// @Summary      Authenticate and receive a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials body model.LoginRequest true "Account credentials"
// @Success      200  {object}  model.LoginResponse
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      401  {object}  common.AppError "Invalid username or password"
// @Failure      429  {object}  common.AppError "Rate limit exceeded"
// @Failure      500  {object}  common.AppError
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	if !h.limiter.Allow(r.Context(), service.PurposeLogin, req.Username, ClientIP(r)) {
		return common.NewAppError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
	}

	ip := ClientIP(r)
	resp, err := h.authService.Login(req, DeviceInfo(r), &ip)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return common.NewAppError(http.StatusUnauthorized, "Invalid username or password", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not process login", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
	return nil
}

// Refresh godoc
// @Summary      Rotate a refresh token
// @Description  Exchanges a refresh token for a new pair; the presented token is invalidated.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        refresh body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.TokenPair
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      401  {object}  common.AppError "Invalid refresh token"
// @Failure      429  {object}  common.AppError "Rate limit exceeded"
// @Failure      500  {object}  common.AppError
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	ip := ClientIP(r)
	pair, err := h.refreshService.Rotate(r.Context(), req.RefreshToken, &ip)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidToken):
			return common.NewAppError(http.StatusUnauthorized, "Invalid refresh token", err)
		case errors.Is(err, service.ErrRateLimited):
			return common.NewAppError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", err)
		default:
			return common.NewAppError(http.StatusInternalServerError, "Could not refresh tokens", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Revoke godoc
// @Summary      Revoke tokens
// @Description  Best-effort revocation of whichever tokens are supplied; always succeeds unless rate limited.
// @Tags         auth
// @Accept       json
// @Param        tokens body model.RevokeRequest true "Tokens to revoke"
// @Success      200
// @Failure      400  {object}  common.AppError "Invalid request payload"
// @Failure      429  {object}  common.AppError "Rate limit exceeded"
// @Failure      500  {object}  common.AppError
// @Router       /auth/revoke [post]
func (h *AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RevokeRequest
	if err := common.ValidateAndDecode(r, &req); err != nil {
		return err
	}

	ip := ClientIP(r)
	if err := h.refreshService.Revoke(r.Context(), req.AccessToken, req.RefreshToken, &ip); err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			return common.NewAppError(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Could not process revocation", err)
	}

	w.WriteHeader(http.StatusOK)
	return nil
}
