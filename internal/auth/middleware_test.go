package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, m *Manager, r Revoker, header string) (*httptest.ResponseRecorder, Identity) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var seen Identity
	e := gin.New()
	e.GET("/x", RequireAccessToken(m, r), func(c *gin.Context) {
		seen, _ = FromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	e.ServeHTTP(w, req)
	return w, seen
}

func TestRequireAccessToken(t *testing.T) {
	m := newManager(t)
	rev := NewMemoryRevoker()
	p, _ := m.IssuePair(time.Now(), Subject{UserID: "u1", Email: "staff@x.test", Role: "Staff"})

	if w, _ := serve(t, m, rev, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w, _ := serve(t, m, rev, "Bearer "+p.RefreshToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for refresh token, got %d", w.Code)
	}

	w, id := serve(t, m, rev, "Bearer "+p.AccessToken)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if id.Email != "staff@x.test" || id.Role != "Staff" {
		t.Fatalf("unexpected identity %+v", id)
	}

	_ = rev.Revoke(context.Background(), id.TokenID, id.ExpiresAt)
	if w, _ := serve(t, m, rev, "Bearer "+p.AccessToken); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after revoke, got %d", w.Code)
	}
}
