package httpapi

import (
	"errors"
	"strings"
	"time"

	"eventmis/internal/audit"
	"eventmis/internal/auth"
	"eventmis/internal/events"
	"eventmis/internal/financial"
	"eventmis/internal/intake"
	"eventmis/internal/messaging"
	"eventmis/internal/reporting"
	"eventmis/internal/settings"
	"eventmis/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Events    *events.Service
	Audit     *audit.Service
	Reports   *reporting.Service
	Messages  *messaging.Service
	Financial *financial.Service
	Users     *users.Service
	Settings  *settings.Service
	Intake    *intake.Service

	Tokens   *auth.Manager
	Revoker  auth.Revoker
	Attempts auth.AttemptLimiter

	// PublicLimiter throttles unauthenticated form posts.
	PublicLimiter *IPRateLimiter

	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// actor is the audit name for the signed-in caller.
func actor(c *gin.Context) string {
	return auth.Actor(c.Request.Context())
}

func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return badRequest("invalid JSON body")
}

// idFrom prefers the query string and falls back to a body value.
func idFrom(c *gin.Context, body string) (string, error) {
	id := strings.TrimSpace(c.Query("id"))
	if id == "" {
		id = strings.TrimSpace(body)
	}
	if id == "" {
		return "", badRequest("id is required")
	}
	return id, nil
}
