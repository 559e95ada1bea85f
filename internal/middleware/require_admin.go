package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get(ContextRole)
	if !exists || role != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "message": "Accès réservé aux administrateurs"})
		return
	}
	c.Next()
}
