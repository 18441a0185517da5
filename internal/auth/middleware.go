package auth

import (
	"net/http"
	"strings"
	"time"

	"eventmis/pkg/logger"

	"github.com/gin-gonic/gin"
)

const authorizationHeader = "Authorization"
const bearerPrefix = "Bearer "

// BearerToken returns the raw token from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
	return tok, tok != ""
}

// RequireAccessToken verifies an unrevoked access token and injects identity into request context.
// It does not perform RBAC checks; those belong to internal/rbac.
func RequireAccessToken(m *Manager, revoked Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := BearerToken(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.Verify(tok, TokenTypeAccess, time.Now())
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		if revoked != nil {
			gone, err := revoked.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				logger.FromGin(c).Error("revocation check failed", "err", err)
				abort(c, http.StatusInternalServerError, "internal error")
				return
			}
			if gone {
				abort(c, http.StatusUnauthorized, "token revoked")
				return
			}
		}

		c.Request = c.Request.WithContext(WithIdentity(c.Request.Context(), IdentityOf(claims)))
		c.Next()
	}
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
