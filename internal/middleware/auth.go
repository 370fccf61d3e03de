// Package middleware provides the HTTP middleware chain: authentication,
// request logging, rate limiting and metrics.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/adigold/splitbook/internal/auth"
)

const (
	// userIDKey is the gin context key for the authenticated user ID.
	userIDKey = "user_id"
	// emailKey is the gin context key for the authenticated email.
	emailKey = "email"
)

// GetUserID extracts the authenticated user ID from the gin context.
// Returns empty string if not set.
func GetUserID(c *gin.Context) string {
	id, _ := c.Get(userIDKey)
	s, _ := id.(string)
	return s
}

// GetEmail extracts the authenticated email from the gin context.
func GetEmail(c *gin.Context) string {
	email, _ := c.Get(emailKey)
	s, _ := email.(string)
	return s
}

// SetUserID injects a user ID into the gin context. Exposed for tests
// that bypass the JWT handshake.
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// RequireAuth validates the Bearer token on every request and stores the
// user identity in the context. Requests without a valid token are
// rejected with 401 before reaching the handler.
func RequireAuth(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, auth.ErrMissingToken.Error())
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortUnauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		claims, err := jwtManager.Validate(parts[1])
		if err != nil {
			abortUnauthorized(c, auth.ErrInvalidToken.Error())
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(emailKey, claims.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
