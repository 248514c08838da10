package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, secret string, claims TokenClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func validClaims(subject string) TokenClaims {
	return TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func authRouter(required bool) *gin.Engine {
	log := logger.New(logger.DEBUG)
	m := NewJWTMiddleware(log, &DefaultTokenValidator{Secret: []byte(testSecret)})

	r := gin.New()
	var guard gin.HandlerFunc
	if required {
		guard = m.RequireAuth()
	} else {
		guard = m.OptionalAuth()
	}
	r.GET("/whoami", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"identity": IdentityFromContext(c)})
	})
	return r
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	r := authRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestRequireAuthRejectsBadSignature(t *testing.T) {
	r := authRouter(true)

	token := signToken(t, "other-secret", validClaims("user-1"))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	r := authRouter(true)

	claims := validClaims("user-1")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	token := signToken(t, testSecret, claims)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthPassesValidToken(t *testing.T) {
	r := authRouter(true)

	token := signToken(t, testSecret, validClaims("user-42"))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestOptionalAuthAnonymousFallsBackToIP(t *testing.T) {
	r := authRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.RemoteAddr = "203.0.113.7:51000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "203.0.113.7")
}

func TestOptionalAuthUsesSubjectWhenPresent(t *testing.T) {
	r := authRouter(false)

	token := signToken(t, testSecret, validClaims("user-42"))
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}
