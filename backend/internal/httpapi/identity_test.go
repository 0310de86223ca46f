package httpapi

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret, subject string, expiresAt time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func contextWithAuth(header string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/users/me", nil)
	if header != "" {
		c.Request.Header.Set("Authorization", header)
	}
	return c
}

func TestJWTIdentity_ValidToken(t *testing.T) {
	identity := NewJWTIdentity("test-secret")
	token := signToken(t, "test-secret", "user-1", time.Now().Add(time.Hour))

	c := contextWithAuth("Bearer " + token)
	assert.Equal(t, "user-1", identity.CurrentUserID(c))
}

func TestJWTIdentity_MissingHeader(t *testing.T) {
	identity := NewJWTIdentity("test-secret")

	assert.Empty(t, identity.CurrentUserID(contextWithAuth("")))
}

func TestJWTIdentity_NotBearer(t *testing.T) {
	identity := NewJWTIdentity("test-secret")
	token := signToken(t, "test-secret", "user-1", time.Now().Add(time.Hour))

	assert.Empty(t, identity.CurrentUserID(contextWithAuth("Basic "+token)))
}

func TestJWTIdentity_WrongSecret(t *testing.T) {
	identity := NewJWTIdentity("test-secret")
	token := signToken(t, "other-secret", "user-1", time.Now().Add(time.Hour))

	assert.Empty(t, identity.CurrentUserID(contextWithAuth("Bearer "+token)))
}

func TestJWTIdentity_ExpiredToken(t *testing.T) {
	identity := NewJWTIdentity("test-secret")
	token := signToken(t, "test-secret", "user-1", time.Now().Add(-time.Hour))

	assert.Empty(t, identity.CurrentUserID(contextWithAuth("Bearer "+token)))
}

func TestJWTIdentity_Garbage(t *testing.T) {
	identity := NewJWTIdentity("test-secret")

	assert.Empty(t, identity.CurrentUserID(contextWithAuth("Bearer not.a.token")))
}
