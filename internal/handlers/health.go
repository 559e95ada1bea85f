package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health vérifie la base SQL et, s'il est configuré, Redis.
func (h *Handler) Health(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if h.Conns != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks["database"] = "ok"
		if sqlDB, err := h.Conns.SQL.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "down"
			healthy = false
		}
		if h.Conns.Redis != nil {
			checks["redis"] = "ok"
			if err := h.Conns.Redis.Ping(ctx).Err(); err != nil {
				checks["redis"] = "down"
			}
		}
		checks["elasticsearch"] = enabled(h.Conns.Elastic != nil)
		checks["minio"] = enabled(h.Conns.MinIO != nil)
		checks["scylla"] = enabled(h.Conns.Scylla != nil)
	}

	status := http.StatusOK
	label := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		label = "degraded"
	}
	c.JSON(status, gin.H{"success": healthy, "data": gin.H{"status": label, "services": checks}})
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}
