package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ErlanBelekov/phone-insights/internal/domain"
	"github.com/ErlanBelekov/phone-insights/internal/reqctx"
	"github.com/gin-gonic/gin"
)

type Authenticator interface {
	Authenticate(raw string) (domain.Identity, error)
}

// Auth validates a Bearer token and sets "userID" and "email" in the gin context.
func Auth(tokens Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := ""
		if header := c.GetHeader("Authorization"); header != "" {
			var ok bool
			raw, ok = strings.CutPrefix(header, "Bearer ")
			if !ok {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
				return
			}
		}

		id, err := tokens.Authenticate(strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": authError(err)})
			return
		}

		c.Set("userID", id.UserID)
		c.Set("email", id.Email)
		c.Request = c.Request.WithContext(reqctx.WithUserID(c.Request.Context(), id.UserID))
		c.Next()
	}
}

func authError(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingToken):
		return "Missing token"
	case errors.Is(err, domain.ErrExpiredToken):
		return "Token expired"
	default:
		return "Invalid token"
	}
}
