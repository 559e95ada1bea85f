package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// AuditLogs liste le journal d'une ressource : GET /api/admin/audit?resource=order&id=12
func (h *Handler) AuditLogs(c *gin.Context) {
	resource := strings.TrimSpace(c.Query("resource"))
	resourceID := strings.TrimSpace(c.Query("id"))
	if resource == "" || resourceID == "" {
		badRequest(c, "Parameters resource and id are required")
		return
	}

	logs, err := h.Audit.List(c.Request.Context(), resource, resourceID, queryInt(c, "limit", 100))
	if err != nil {
		h.respondError(c, err)
		return
	}
	ok(c, gin.H{"items": logs, "total": len(logs)})
}
