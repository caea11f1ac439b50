package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"visa-onboarding.backend/internal/domain/entities"
	domainerrors "visa-onboarding.backend/internal/domain/errors"
	"visa-onboarding.backend/pkg/jwt"
)

func newAuthRouter(svc *jwt.JWTService, roles ...entities.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := []gin.HandlerFunc{AuthMiddleware(svc)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetUserRole(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})
	r.GET("/me", chain...)
	return r
}

func serve(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		req.Header.Set(AuthorizationHeader, header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	r := newAuthRouter(jwt.NewJWTService("secret", time.Minute, time.Hour))

	w := serve(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeUnauthorized)

	w = serve(r, "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Bearer")

	w = serve(r, BearerPrefix+"garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddleware_RejectsRefreshToken(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	r := newAuthRouter(svc)
	pair, err := svc.GenerateTokenPair(uuid.New(), "e@corp.test", string(entities.UserRoleEmployee))
	require.NoError(t, err)

	w := serve(r, BearerPrefix+pair.RefreshToken)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	r := newAuthRouter(svc)
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(userID, "e@corp.test", string(entities.UserRoleEmployee))
	require.NoError(t, err)

	w := serve(r, BearerPrefix+pair.AccessToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), `"role":"EMPLOYEE"`)
}

func TestRequireRole(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Minute, time.Hour)
	r := newAuthRouter(svc, entities.UserRoleHR)

	employee, err := svc.GenerateTokenPair(uuid.New(), "e@corp.test", string(entities.UserRoleEmployee))
	require.NoError(t, err)
	w := serve(r, BearerPrefix+employee.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeForbidden)

	hr, err := svc.GenerateTokenPair(uuid.New(), "hr@corp.test", string(entities.UserRoleHR))
	require.NoError(t, err)
	w = serve(r, BearerPrefix+hr.AccessToken)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RequireEmployee(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
