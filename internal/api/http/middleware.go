package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/recipecorner/recipecorner/internal/tokens"
)

const claimsContextKey = "authClaims"

// Authenticated verifies the bearer token and stores its claims in the gin
// context. Requests without a valid token are rejected with 401.
func Authenticated(encoder *tokens.Encoder) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		claims, err := encoder.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// RequireRole gates a route on one of the role claims. Runs after
// Authenticated.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		for _, r := range claims.Roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{Error: "forbidden"})
	}
}

func claimsFrom(c *gin.Context) *tokens.Claims {
	v, ok := c.Get(claimsContextKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*tokens.Claims)
	if !ok {
		return nil
	}
	return claims
}
