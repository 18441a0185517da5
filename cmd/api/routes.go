package main

import (
	"context"
	"net/http"
	"time"

	"eventmis/internal/httpapi"
	"eventmis/internal/metrics"
	"eventmis/internal/store"
	"eventmis/pkg/logger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, db *gorm.DB, h *httpapi.Handlers, m *metrics.Metrics) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx, db); err != nil {
			logger.FromGin(c).Warn("readiness check failed", "err", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", m.Handler())

	httpapi.Routes(r.Group("/api"), h)
}
