package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"eventmis/internal/audit"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/events/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/"+id, nil))
	}

	require.Equal(t, 2.0, testutil.ToFloat64(m.requestCount.WithLabelValues("GET", "/events/:id", "404")))
}

func TestObservers(t *testing.T) {
	m := New()
	m.AuditAppendFailed(audit.ActionArchive, audit.EntityEvent)
	m.LifecycleOutcome("archive", "not_found")
	m.LifecycleOutcome("archive", "not_found")

	require.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures.WithLabelValues("ARCHIVE", "Event")))
	require.Equal(t, 2.0, testutil.ToFloat64(m.lifecycle.WithLabelValues("archive", "not_found")))
}

func TestHandler_ExposesRegistry(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()
	m.LifecycleOutcome("restore", "ok")

	r := gin.New()
	r.GET("/metrics", m.Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), `eventmis_event_lifecycle_operations_total{operation="restore",outcome="ok"} 1`))
}
