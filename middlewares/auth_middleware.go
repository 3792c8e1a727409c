package middlewares

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/utils"
)

// Keys set on the gin context by the auth middlewares.
const (
	ContextUserID    = "userID"
	ContextRole      = "role"
	ContextToken     = "token"
	ContextExpiresAt = "tokenExpiresAt"
)

func AuthMiddleware(blacklist utils.TokenBlacklist) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if err := authenticate(c, blacklist, tokenString); err != nil {
			utils.RespondError(c, http.StatusUnauthorized, err)
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate validates tokenString and stores its claims on c.
func authenticate(c *gin.Context, blacklist utils.TokenBlacklist, tokenString string) error {
	claims, err := utils.ParseToken(tokenString)
	if err != nil || claims == nil {
		return errors.New("Invalid or expired token")
	}
	if claims.UserID == 0 {
		return errors.New("Invalid user ID in token")
	}

	if blacklist != nil {
		revoked, err := blacklist.Contains(c.Request.Context(), tokenString)
		if err != nil {
			utils.ErrorLogger.WithError(err).Error("Token blacklist lookup failed")
			return errors.New("Invalid or expired token")
		}
		if revoked {
			return errors.New("Token has been revoked")
		}
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextRole, claims.Role)
	c.Set(ContextToken, tokenString)
	if claims.ExpiresAt != nil {
		c.Set(ContextExpiresAt, claims.ExpiresAt.Time)
	}
	return nil
}

func CurrentUserID(c *gin.Context) uint {
	return c.GetUint(ContextUserID)
}

// TokenRemaining is how long the request's token stays valid.
func TokenRemaining(c *gin.Context) time.Duration {
	exp := c.GetTime(ContextExpiresAt)
	if exp.IsZero() {
		return utils.TokenTTL
	}
	if d := time.Until(exp); d > 0 {
		return d
	}
	return time.Second
}
