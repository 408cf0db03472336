package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/cuepoint/internal/auth"
)

const (
	claimsKey = "claims"

	MsgNotAuthenticated     = "Not authenticated"
	MsgInvalidCredentials   = "Could not validate credentials"
	MsgNotEnoughPermissions = "Not enough permissions"
)

// TokenVerifier turns a bearer token into claims.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": message})
}

// checks "Authorization: Bearer <token>", verifies it and sets the claims in context.
func JWTMiddleware(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, MsgNotAuthenticated)
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			unauthorized(c, MsgNotAuthenticated)
			return
		}

		claims, err := tokens.Verify(parts[1])
		if err != nil {
			unauthorized(c, MsgInvalidCredentials)
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole must run after JWTMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			unauthorized(c, MsgInvalidCredentials)
			return
		}
		if claims.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": MsgNotEnoughPermissions})
			return
		}
		c.Next()
	}
}

// retrieves the verified claims from Gin context (after JWTMiddleware has run).
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
