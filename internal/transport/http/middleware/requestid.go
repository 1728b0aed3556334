package middleware

import (
	"github.com/ErlanBelekov/phone-insights/internal/reqctx"
	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"
)

const maxRequestIDLen = 64

// RequestID makes sure every request carries one trusted ID. A client-supplied
// X-Request-ID is kept when it is short and printable, otherwise replaced. The
// request header is rewritten too, so the access log, handler logs and the
// response all report the same value.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sloggin.RequestIDHeaderKey)
		if !validRequestID(id) {
			id = reqctx.NewRequestID()
		}

		c.Request.Header.Set(sloggin.RequestIDHeaderKey, id)
		c.Request = c.Request.WithContext(reqctx.WithRequestID(c.Request.Context(), id))
		c.Header(sloggin.RequestIDHeaderKey, id)
		c.Next()
	}
}

// validRequestID accepts [A-Za-z0-9._:-] so IDs are safe to echo and log.
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		switch b := id[i]; {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '.', b == '_', b == ':', b == '-':
		default:
			return false
		}
	}
	return true
}
