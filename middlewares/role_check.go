package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/hospital-app/models"
	"github.com/yeremiapane/hospital-app/utils"
)

// RequireRoles lets a request through only when the authenticated role is
// one of roles. It must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
		names = append(names, string(r))
	}
	denied := fmt.Errorf("%s access required", strings.Join(names, " or "))

	return func(c *gin.Context) {
		userRole, exists := c.Get(ContextRole)
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		if _, ok := allowed[models.Role(role)]; !ok {
			utils.InfoLogger.WithFields(map[string]interface{}{
				"role": role,
				"path": c.FullPath(),
			}).Warn("Role not permitted")
			utils.RespondError(c, http.StatusForbidden, denied)
			c.Abort()
			return
		}

		c.Next()
	}
}
