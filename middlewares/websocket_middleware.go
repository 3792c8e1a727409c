package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/utils"
)

// WebSocketAuthMiddleware reads the JWT from ?token= since browsers cannot
// set headers on a websocket handshake.
func WebSocketAuthMiddleware(blacklist utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.AbortWithStatus(401)
			return
		}
		if err := authenticate(c, blacklist, token); err != nil {
			c.AbortWithStatus(401)
			return
		}
		c.Next()
	}
}
