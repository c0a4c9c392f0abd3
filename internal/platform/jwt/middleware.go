package jwtmw

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// EnvKeyJWTSecret is the environment variable holding the HMAC secret.
const EnvKeyJWTSecret = "JWT_SECRET"

// ContextUserID is the gin context key under which the token subject is stored.
const ContextUserID = "userID"

var errNoBearer = errors.New("missing bearer token")

// AuthRequired returns a Gin middleware function that validates JWT tokens
// and restricts access to authenticated users only.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// Server misconfiguration (JWT_SECRET not set)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
			return
		}

		sub, err := authenticate(c, secret)
		if errors.Is(err, errNoBearer) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if sub != "" {
			c.Set(ContextUserID, sub)
		}
		c.Next()
	}
}

// OptionalAuth identifies the caller when a bearer token is present.
// Requests without one pass through anonymously. A token that is present
// but invalid is rejected. With no secret configured, tokens are ignored.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			c.Next()
			return
		}

		sub, err := authenticate(c, secret)
		if errors.Is(err, errNoBearer) {
			c.Next()
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		if sub != "" {
			c.Set(ContextUserID, sub)
		}
		c.Next()
	}
}

// UserID returns the authenticated subject, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

// authenticate parses the bearer token and returns its subject.
func authenticate(c *gin.Context, secret string) (string, error) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", errNoBearer
	}
	tokenStr := strings.TrimPrefix(auth, "Bearer ")

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// Check signing algorithm (only HMAC allowed)
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil
	}
	switch sub := claims["sub"].(type) {
	case string:
		return sub, nil
	case float64: // JWT numbers are decoded as float64
		return strconv.FormatFloat(sub, 'f', -1, 64), nil
	}
	return "", nil
}
