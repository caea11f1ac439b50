package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/internal/interfaces/http/response"
	"visa-onboarding.backend/pkg/jwt"
	"visa-onboarding.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// UserRoleKey is the context key for user role
	UserRoleKey = "userRole"
)

// AuthMiddleware validates the bearer access token and stores the caller's
// identity on the gin context and the request context
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.Abort(c, domainerrors.Unauthorized("Authorization header is required"))
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Abort(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			return
		}

		claims, err := jwtService.ValidateAccessToken(strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Debug(c.Request.Context(), "access token rejected", zap.String("path", c.FullPath()), zap.Error(err))
			if errors.Is(err, jwt.ErrExpiredToken) {
				response.Abort(c, domainerrors.Unauthorized("Token has expired"))
				return
			}
			response.Abort(c, domainerrors.Unauthorized("Invalid token"))
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID.String()))

		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetUserRole gets the user role from context
func GetUserRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return s, ok
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := GetUserRole(c)
		if !exists {
			response.Abort(c, domainerrors.Unauthorized("User role not found"))
			return
		}

		for _, role := range roles {
			if userRole == string(role) {
				c.Next()
				return
			}
		}

		response.Abort(c, domainerrors.Forbidden("Insufficient permissions"))
	}
}

// RequireHR allows HR users only
func RequireHR() gin.HandlerFunc {
	return RequireRole(entities.UserRoleHR)
}

// RequireEmployee allows employees only
func RequireEmployee() gin.HandlerFunc {
	return RequireRole(entities.UserRoleEmployee)
}
