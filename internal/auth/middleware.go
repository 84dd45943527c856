package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RequireAuth resolves the caller's identity from the Bearer token and stores
// it in the request context. Handlers downstream receive an
// already-validated identity string and never look at credentials.
func (m *Manager) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := m.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(identityKey, claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

// Identity returns the authenticated identity set by RequireAuth, empty when
// the route is unauthenticated.
func Identity(c *gin.Context) string {
	return c.GetString(identityKey)
}
