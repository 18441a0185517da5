package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"eventmis/internal/audit"
	"eventmis/internal/auth"
	"eventmis/internal/users"
	"eventmis/pkg/logger"

	"github.com/gin-gonic/gin"
)

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	auth.TokenPair
	User users.User `json:"user"`
}

// Login checks credentials and issues a token pair. Failed attempts are
// counted per email; once the limit is reached the email is locked out for
// the configured window.
func (h *Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.Attempts != nil {
		blocked, err := h.Attempts.Blocked(ctx, email)
		if err != nil {
			fail(c, err)
			return
		}
		if blocked {
			fail(c, &statusError{sentinel: errRateLimited, msg: "too many failed login attempts, try again later"})
			return
		}
	}

	u, err := h.Users.Authenticate(ctx, email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) && h.Attempts != nil {
			if ferr := h.Attempts.Fail(ctx, email); ferr != nil {
				logger.FromGin(c).Warn("login attempt not counted", "err", ferr)
			}
		}
		fail(c, err)
		return
	}
	if h.Attempts != nil {
		if err := h.Attempts.Reset(ctx, email); err != nil {
			logger.FromGin(c).Warn("login attempts not reset", "err", err)
		}
	}

	pair, err := h.Tokens.IssuePair(h.now(), auth.Subject{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Audit.Record(ctx, audit.ActionLogin, audit.EntityAdmin, u.ID,
		fmt.Sprintf("Logged in: %s", u.Email), u.Email, nil); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, sessionResponse{TokenPair: pair, User: u}, "Login successful")
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a refresh token. The old one is revoked, and the role is
// re-read so demotions take effect.
func (h *Handlers) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	now := h.now()

	claims, err := h.Tokens.Verify(req.RefreshToken, auth.TokenTypeRefresh, now)
	if err != nil {
		fail(c, &statusError{sentinel: errUnauthorized, msg: "invalid refresh token"})
		return
	}
	if gone, err := h.Revoker.IsRevoked(ctx, claims.ID); err != nil {
		fail(c, err)
		return
	} else if gone {
		fail(c, &statusError{sentinel: errUnauthorized, msg: "refresh token revoked"})
		return
	}

	u, err := h.Users.Get(ctx, claims.UserID)
	if errors.Is(err, users.ErrNotFound) {
		fail(c, &statusError{sentinel: errUnauthorized, msg: "account no longer exists"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if !u.Active() {
		fail(c, users.ErrInactive)
		return
	}

	if err := h.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		fail(c, err)
		return
	}
	pair, err := h.Tokens.IssuePair(now, auth.Subject{UserID: u.ID, Email: u.Email, Role: string(u.Role)})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, sessionResponse{TokenPair: pair, User: u}, "")
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Logout revokes the presented access token and, when supplied, the refresh
// token of the same user.
func (h *Handlers) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		fail(c, errUnauthorized)
		return
	}
	var req logoutRequest
	if c.Request.ContentLength > 0 {
		if err := bindJSON(c, &req); err != nil {
			fail(c, err)
			return
		}
	}

	if err := h.Revoker.Revoke(ctx, id.TokenID, id.ExpiresAt); err != nil {
		fail(c, err)
		return
	}
	if req.RefreshToken != "" {
		claims, err := h.Tokens.Verify(req.RefreshToken, auth.TokenTypeRefresh, h.now())
		if err == nil && claims.UserID == id.UserID {
			if err := h.Revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				fail(c, err)
				return
			}
		}
	}
	respond(c, http.StatusOK, nil, "Logged out")
}

// Me returns the signed-in user, re-checking that the account is still
// active.
func (h *Handlers) Me(c *gin.Context) {
	ctx := c.Request.Context()
	id, err := auth.FromContext(ctx)
	if err != nil {
		fail(c, errUnauthorized)
		return
	}
	u, err := h.Users.Get(ctx, id.UserID)
	if errors.Is(err, users.ErrNotFound) {
		fail(c, &statusError{sentinel: errUnauthorized, msg: "account no longer exists"})
		return
	}
	if err != nil {
		fail(c, err)
		return
	}
	if !u.Active() {
		fail(c, users.ErrInactive)
		return
	}
	respond(c, http.StatusOK, u, "")
}

func (h *Handlers) UpdateProfile(c *gin.Context) {
	var req users.ProfileInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, err := h.Users.UpdateProfile(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, u, "Profile updated successfully")
}
