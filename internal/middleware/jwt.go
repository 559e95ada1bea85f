package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Clés posées dans le contexte Gin par AuthRequired.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": message})
}

// AuthRequired valide le jeton Bearer HS256 et expose user_id (uint), email et role.
func AuthRequired(secret string, logger *zap.Logger) gin.HandlerFunc {
	key := []byte(secret)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			unauthorized(c, "Token manquant")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Debug("❌ Format Authorization invalide", zap.Int("parts", len(parts)))
			unauthorized(c, "Format Authorization invalide")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("méthode de signature inattendue: %v", token.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			logger.Debug("❌ Erreur parsing JWT", zap.Error(err))
			unauthorized(c, "Token invalide")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(c, "Token invalide")
			return
		}

		userID, ok := claimUserID(claims["user_id"])
		if !ok {
			logger.Debug("❌ user_id manquant ou invalide dans claims")
			unauthorized(c, "user_id manquant")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextEmail, claims["email"])
		c.Set(ContextRole, claims["role"])
		c.Next()
	}
}

// claimUserID accepte un identifiant numérique ou sa forme texte.
func claimUserID(raw interface{}) (uint, bool) {
	switch v := raw.(type) {
	case float64:
		if v <= 0 || v != float64(uint(v)) {
			return 0, false
		}
		return uint(v), true
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return 0, false
		}
		return uint(id), true
	}
	return 0, false
}

// UserID lit l'identifiant posé par AuthRequired.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}

// Email lit l'e-mail du jeton, vide s'il est absent.
func Email(c *gin.Context) string {
	v, _ := c.Get(ContextEmail)
	s, _ := v.(string)
	return s
}

// TokenFromQuery recopie ?token= dans l'en-tête Authorization ; les navigateurs ne
// peuvent pas poser d'en-tête sur une connexion WebSocket.
func TokenFromQuery(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		if token := c.Query("token"); token != "" {
			c.Request.Header.Set("Authorization", "Bearer "+token)
		}
	}
	c.Next()
}
