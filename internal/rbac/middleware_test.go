package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"eventmis/internal/auth"

	"github.com/gin-gonic/gin"
)

func run(t *testing.T, role string, gate gin.HandlerFunc) int {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if role != "" {
			ctx := auth.WithIdentity(c.Request.Context(), auth.Identity{UserID: "u", Email: "u@x.test", Role: role})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}, gate, func(c *gin.Context) {
		c.Status(200)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireAnyRole_StaffAllowedOnSharedRoutes(t *testing.T) {
	if code := run(t, RoleStaff, RequireAnyRole(AnyStaff...)); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
}

func TestRequireAdmin_StaffDenied(t *testing.T) {
	if code := run(t, RoleStaff, RequireAdmin()); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
	if code := run(t, RoleAdmin, RequireAdmin()); code != 200 {
		t.Fatalf("expected 200 for admin, got %d", code)
	}
}

func TestRequireAnyRole_IdentityRequired(t *testing.T) {
	if code := run(t, "", RequireAnyRole(AnyStaff...)); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireAnyRole_UnknownRoleDenied(t *testing.T) {
	if code := run(t, "super_admin", RequireAnyRole(AnyStaff...)); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}
