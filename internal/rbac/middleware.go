package rbac

import (
	"net/http"
	"slices"

	"eventmis/internal/auth"

	"github.com/gin-gonic/gin"
)

// RequireAnyRole lets the request through when the signed-in role is one of
// allowed. Mount it after auth.RequireAccessToken; without an identity it
// answers 401, with the wrong role 403.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	allowed = slices.Clone(allowed)
	return func(c *gin.Context) {
		id, err := auth.FromContext(c.Request.Context())
		if err != nil || id.Role == "" {
			deny(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !slices.Contains(allowed, id.Role) {
			deny(c, http.StatusForbidden, id.Role+" role cannot access this resource")
			return
		}
		c.Next()
	}
}

// RequireAdmin guards user management, settings writes, audit append and
// permanent deletes.
func RequireAdmin() gin.HandlerFunc { return RequireAnyRole(RoleAdmin) }

func deny(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
