package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tutortrack/tutortrack-api/internal/models"
	"github.com/tutortrack/tutortrack-api/internal/service"
)

func newTestAuthService() *service.AuthService {
	return service.NewAuthService(nil, zap.NewNop(), service.AuthConfig{
		Secret:     "test-secret",
		Expiration: time.Hour,
		Issuer:     "tutortrack-api",
	})
}

func newProtectedRouter(authSvc *service.AuthService, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWT(authSvc)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		claims := c.MustGet(ContextUserKey).(*models.JWTClaims)
		c.JSON(http.StatusOK, gin.H{"name": claims.Name})
	})
	r.GET("/protected", handlers...)
	return r
}

func loginToken(t *testing.T, authSvc *service.AuthService, name string) string {
	t.Helper()
	resp, err := authSvc.Login(context.Background(), models.LoginRequest{Name: name})
	require.NoError(t, err)
	return resp.AccessToken
}

func TestJWTMiddlewareAllowsValidToken(t *testing.T) {
	authSvc := newTestAuthService()
	router := newProtectedRouter(authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+loginToken(t, authSvc, "王老師"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "王老師")
}

func TestJWTMiddlewareRejectsMissingHeader(t *testing.T) {
	router := newProtectedRouter(newTestAuthService())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsMalformedHeader(t *testing.T) {
	authSvc := newTestAuthService()
	router := newProtectedRouter(authSvc)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", loginToken(t, authSvc, "王老師"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddlewareRejectsForgedToken(t *testing.T) {
	router := newProtectedRouter(newTestAuthService())

	other := service.NewAuthService(nil, zap.NewNop(), service.AuthConfig{Secret: "other", Expiration: time.Hour})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+loginToken(t, other, "王老師"))
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRolesBlocksTutors(t *testing.T) {
	authSvc := newTestAuthService()
	router := newProtectedRouter(authSvc, RequireRoles(models.RoleAdmin))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+loginToken(t, authSvc, "王老師"))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+loginToken(t, authSvc, "admin"))
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
