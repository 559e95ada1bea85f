package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/middleware"
)

const msgAccessDenied = "Access denied"

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func okMessage(c *gin.Context, message string, data interface{}) {
	body := gin.H{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(http.StatusOK, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusForbidden, gin.H{"success": false, "message": msgAccessDenied})
}

// respondError convertit une erreur de service en réponse JSON. Le détail des erreurs
// d'infrastructure est journalisé, jamais renvoyé.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperror.StatusCode(err)
	if status >= http.StatusInternalServerError {
		h.Logger.Error("❌ Erreur interne",
			zap.String("path", c.Request.URL.Path),
			zap.String("action", c.Query("action")),
			zap.Error(err))
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"success": false, "message": apperror.PublicMessage(err)})
}

// route combine la méthode HTTP et ?action= pour l'aiguillage des endpoints multiplexés.
func route(c *gin.Context, defaultAction string) string {
	action := strings.ToLower(strings.TrimSpace(c.Query("action")))
	if action == "" {
		action = defaultAction
	}
	return c.Request.Method + " " + action
}

func unknownAction(c *gin.Context) {
	badRequest(c, "Unknown action")
}

// queryID lit un identifiant strictement positif dans la query string.
func queryID(c *gin.Context, name string) (uint, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, apperror.Validationf("Parameter %s is required", name)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validationf("Parameter %s must be a positive integer", name)
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}

func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperror.Validation("Invalid request body")
	}
	return nil
}

func currentUser(c *gin.Context) uint {
	id, _ := middleware.UserID(c)
	return id
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get(middleware.ContextRole)
	return role == "admin"
}

// authorize accepte l'administrateur ou le propriétaire de la ressource ; sinon 403.
func authorize(c *gin.Context, ownerID uint) bool {
	if isAdmin(c) || (ownerID != 0 && ownerID == currentUser(c)) {
		return true
	}
	forbidden(c)
	return false
}

func requireAdmin(c *gin.Context) bool {
	if isAdmin(c) {
		return true
	}
	forbidden(c)
	return false
}

// targetUser résout ?id= (ou le champ id_user) vers l'utilisateur visé, par défaut l'appelant.
func targetUser(c *gin.Context, explicit uint) (uint, bool) {
	userID := explicit
	if userID == 0 {
		userID = currentUser(c)
	}
	return userID, authorize(c, userID)
}

// auditAs nomme l'action auditée dès l'entrée du handler, pour tracer aussi les refus.
func auditAs(c *gin.Context, action string) {
	c.Set(middleware.AuditAction, action)
}

func auditChange(c *gin.Context, action string, oldValue, newValue interface{}) {
	c.Set(middleware.AuditAction, action)
	if oldValue != nil {
		c.Set(middleware.AuditOldValue, oldValue)
	}
	if newValue != nil {
		c.Set(middleware.AuditNewValue, newValue)
	}
}

// optionalQueryID retourne 0 quand le paramètre est absent.
func optionalQueryID(c *gin.Context, name string) (uint, error) {
	if strings.TrimSpace(c.Query(name)) == "" {
		return 0, nil
	}
	return queryID(c, name)
}
