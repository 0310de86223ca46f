package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Identity resolves the acting user for a request. An empty id means no
// identity could be resolved. The domain layers trust the resolved id
// unchecked; verifying it is entirely this collaborator's job.
type Identity interface {
	CurrentUserID(c *gin.Context) string
}

// JWTIdentity resolves identity from a bearer token in the Authorization
// header, signed with a shared HMAC secret. The user id is the token
// subject.
type JWTIdentity struct {
	secret []byte
}

// NewJWTIdentity creates a JWT-based identity resolver
func NewJWTIdentity(secret string) *JWTIdentity {
	return &JWTIdentity{secret: []byte(secret)}
}

// CurrentUserID returns the subject of a valid bearer token, or ""
func (j *JWTIdentity) CurrentUserID(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}

	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return ""
	}
	return claims.Subject
}
