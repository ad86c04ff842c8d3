package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/cookbook/backend/internal/types"
)

const identityKey = "identity"

// Authenticator resolves a bearer access token to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*types.Identity, error)
}

// Auth rejects requests without a valid bearer token.
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		if !authenticate(c, a, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the identity when a bearer token is present. A token that
// is present but invalid is still rejected.
func OptionalAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if !authenticate(c, a, token) {
				return
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided."})
			return
		}
		if !id.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Auth or OptionalAuth.
func CurrentIdentity(c *gin.Context) (*types.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*types.Identity)
	return id, ok && id != nil
}

// SetIdentity stores id on the request context.
func SetIdentity(c *gin.Context, id *types.Identity) {
	c.Set(identityKey, id)
}

func authenticate(c *gin.Context, a Authenticator, token string) bool {
	id, err := a.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Given token not valid for any token type"})
		return false
	}
	SetIdentity(c, id)
	return true
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
