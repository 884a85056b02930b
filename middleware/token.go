package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// TokenKey holds the bearer token of the request, possibly empty.
	TokenKey = "token"
	// UserIDKey is set by controllers once the caller is identified.
	UserIDKey = "user_id"
)

// TokenExtractor reads "Authorization: Bearer <token>". The scheme is
// matched case-insensitively.
func TokenExtractor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(TokenKey, bearerToken(c.GetHeader("Authorization")))
		c.Next()
	}
}

func Token(c *gin.Context) string {
	return c.GetString(TokenKey)
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
