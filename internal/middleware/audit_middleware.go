package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/audit"
)

// Clés que les handlers peuvent poser pour enrichir l'entrée d'audit.
const (
	AuditAction     = "audit_action"
	AuditResourceID = "audit_resource_id"
	AuditOldValue   = "audit_old"
	AuditNewValue   = "audit_new"
)

// AuditCriticalActions enregistre l'action après traitement, réussie ou non.
// Un handler peut remplacer l'action via AuditAction ; sans action, rien n'est enregistré.
func AuditCriticalActions(store audit.Logger, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		name := action
		if override := c.GetString(AuditAction); override != "" {
			name = override
		}
		if name == "" {
			return
		}

		resourceID := c.GetString(AuditResourceID)
		if resourceID == "" {
			resourceID = c.Query("id")
		}
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		oldValue, _ := c.Get(AuditOldValue)
		newValue, _ := c.Get(AuditNewValue)

		entry := audit.NewEntry(name, resource, resourceID, oldValue, newValue)
		if id, ok := UserID(c); ok {
			entry.UserID = strconv.FormatUint(uint64(id), 10)
		}
		entry.IPAddress = c.ClientIP()
		entry.UserAgent = c.Request.UserAgent()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			entry.Success = false
			entry.ErrorMsg = "Action échouée (HTTP " + strconv.Itoa(status) + ")"
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), 3*time.Second)
		defer cancel()
		if err := store.Record(ctx, entry); err != nil {
			logger.Warn("⚠️ Audit non enregistré", zap.String("action", name), zap.Error(err))
		}
	}
}
