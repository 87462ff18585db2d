package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"leadchat/internal/pkg/jwtutil"
	"leadchat/internal/transport/http/response"
)

const (
	ContextUserIDKey   = "user_id"
	ContextUsernameKey = "username"
)

// AuthJWT rejects requests without a valid bearer token.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseBearer(c, secret)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "invalid or missing token")
			c.Abort()
			return
		}
		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUsernameKey, claims.Username)
		c.Next()
	}
}

// OptionalAuthJWT attaches the user identity when a valid token is present
// and lets everything else pass through untouched. Conversation routes stay
// open to anonymous visitors; a logged-in user just gets ownership recorded.
func OptionalAuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parseBearer(c, secret); ok {
			c.Set(ContextUserIDKey, claims.UserID)
			c.Set(ContextUsernameKey, claims.Username)
		}
		c.Next()
	}
}

func parseBearer(c *gin.Context, secret string) (*jwtutil.Claims, bool) {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader == "" {
		return nil, false
	}
	token, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return nil, false
	}
	claims, err := jwtutil.ParseToken(secret, strings.TrimSpace(token))
	if err != nil {
		return nil, false
	}
	return claims, true
}

// UserIDFromContext returns the authenticated user id, if any.
func UserIDFromContext(c *gin.Context) (uint, bool) {
	raw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return 0, false
	}
	userID, ok := raw.(uint)
	return userID, ok
}
