package middleware

import (
	"net/http"
	"strings"

	"github.com/ecoisla/market/auth"
	"github.com/ecoisla/market/models"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// ValidateToken requires a valid bearer token and exposes its claims to the
// handlers that follow.
func ValidateToken(tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is missing"})
			return
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

		claims, err := tokens.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

// RequireProducer must run after ValidateToken.
func RequireProducer(c *gin.Context) {
	claims, ok := Claims(c)
	if !ok || claims.Role != models.RoleProducer {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Only producers can manage products"})
		return
	}
	c.Next()
}

// Claims returns the caller set by ValidateToken.
func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
