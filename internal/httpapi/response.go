package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"eventmis/internal/audit"
	"eventmis/internal/auth"
	"eventmis/internal/events"
	"eventmis/internal/financial"
	"eventmis/internal/intake"
	"eventmis/internal/messaging"
	"eventmis/internal/pricing"
	"eventmis/internal/reporting"
	"eventmis/internal/settings"
	"eventmis/internal/users"
	"eventmis/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

var (
	errBadRequest   = errors.New("bad request")
	errUnauthorized = errors.New("unauthorized")
	errForbidden    = errors.New("forbidden")
	errRateLimited  = errors.New("too many requests")
)

func respond(c *gin.Context, status int, data any, msg string) {
	c.JSON(status, envelope{Success: true, Data: data, Message: msg})
}

func respondList(c *gin.Context, data any, n int) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data, Count: &n})
}

// fail maps err onto a status. Anything unrecognised is a store or
// programming error: it is logged and the client gets a fixed message.
func fail(c *gin.Context, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		logger.FromGin(c).Error("request failed", "err", err)
		msg = "Internal server error"
	}
	c.AbortWithStatusJSON(status, envelope{Success: false, Error: msg})
}

func badRequest(msg string) error { return &statusError{sentinel: errBadRequest, msg: msg} }

// statusError carries a client-facing message for one of the local sentinels.
type statusError struct {
	sentinel error
	msg      string
}

func (e *statusError) Error() string { return e.msg }
func (e *statusError) Unwrap() error { return e.sentinel }

type rule struct {
	status    int
	sentinels []error
}

var rules = []rule{
	{http.StatusBadRequest, []error{
		errBadRequest,
		events.ErrInvalidArgument, financial.ErrInvalidArgument, messaging.ErrInvalidArgument,
		users.ErrInvalidArgument, settings.ErrInvalidArgument, intake.ErrInvalidArgument,
		audit.ErrInvalidEntry, reporting.ErrInvalidRequest, pricing.ErrInvalidQuoteReq,
	}},
	{http.StatusNotFound, []error{events.ErrNotFound, financial.ErrNotFound, messaging.ErrNotFound, users.ErrNotFound}},
	{http.StatusConflict, []error{users.ErrConflict}},
	{http.StatusUnauthorized, []error{errUnauthorized, users.ErrInvalidCredentials, auth.ErrInvalidToken, auth.ErrNoIdentity}},
	{http.StatusForbidden, []error{errForbidden, users.ErrInactive}},
	{http.StatusTooManyRequests, []error{errRateLimited}},
}

func classify(err error) (int, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, TranslateValidationError(verrs)
	}
	for _, r := range rules {
		for _, s := range r.sentinels {
			if errors.Is(err, s) {
				return r.status, clientMessage(err, s)
			}
		}
	}
	return http.StatusInternalServerError, ""
}

// clientMessage drops the generic sentinel prefix, keeping the detail.
func clientMessage(err, sentinel error) string {
	msg := err.Error()
	if rest, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok && rest != "" {
		return rest
	}
	return msg
}
