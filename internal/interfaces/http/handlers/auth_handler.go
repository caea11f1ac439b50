package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/interfaces/http/response"
	"visa-onboarding.backend/pkg/jwt"
)

const (
	accessCookie  = "token"
	refreshCookie = "refresh_token"
)

type authService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authUsecase authService) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase}
}

// Register redeems an invitation and creates the employee account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration successful",
		"user":    user,
	})
}

// Login handles user login by username or email
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	setAuthCookies(c, authResponse.AccessToken, authResponse.RefreshToken)
	response.Success(c, http.StatusOK, authResponse)
}

// RefreshToken handles token refresh. The token comes from the body or the cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var refreshToken string

	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err == nil {
			refreshToken = input.RefreshToken
		}
	}
	if refreshToken == "" {
		if cookie, err := c.Cookie(refreshCookie); err == nil {
			refreshToken = cookie
		}
	}
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	tokenPair, err := h.authUsecase.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "Invalid or expired refresh token", err))
		return
	}

	setAuthCookies(c, tokenPair.AccessToken, tokenPair.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  tokenPair.AccessToken,
		"refreshToken": tokenPair.RefreshToken,
	})
}

// GetMe returns current authenticated user details
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	user, err := h.authUsecase.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

func setAuthCookies(c *gin.Context, access, refresh string) {
	c.SetCookie(accessCookie, access, 3600*24, "/", "", false, true)
	c.SetCookie(refreshCookie, refresh, 3600*24*7, "/", "", false, true)
}
