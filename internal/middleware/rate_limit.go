package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	APIMaxRequests     = 100 // par minute et par IP
	CartMaxRequests    = 20  // mutations de panier par minute et par utilisateur
	PaymentMaxRequests = 5   // envois de preuve par 10 minutes et par utilisateur

	APIWindow     = time.Minute
	CartWindow    = time.Minute
	PaymentWindow = 10 * time.Minute
)

// APIRateLimit limite le nombre de requêtes par IP (général)
func APIRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return fixedWindow(rdb, APIMaxRequests, APIWindow, "Trop de requêtes. Réessayez dans 1 minute",
		func(c *gin.Context) string { return "api_requests:" + c.ClientIP() })
}

// CartRateLimit limite les écritures panier (anti-spam)
func CartRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return fixedWindow(rdb, CartMaxRequests, CartWindow, "Trop d'actions sur le panier. Ralentissez un peu", userKey("cart_writes:"))
}

// PaymentRateLimit limite les envois de preuve de paiement
func PaymentRateLimit(rdb *redis.Client) gin.HandlerFunc {
	return fixedWindow(rdb, PaymentMaxRequests, PaymentWindow, "Trop d'envois de paiement. Réessayez plus tard", userKey("payment_submits:"))
}

func userKey(prefix string) func(*gin.Context) string {
	return func(c *gin.Context) string {
		id, ok := UserID(c)
		if !ok {
			return ""
		}
		return prefix + strconv.FormatUint(uint64(id), 10)
	}
}

// fixedWindow compte les requêtes par clé dans Redis. Sans Redis ou sans clé, la requête passe.
func fixedWindow(rdb *redis.Client, limit int64, window time.Duration, message string, keyOf func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}
		key := keyOf(c)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis indisponible : on ne bloque pas le trafic
			c.Next()
			return
		}
		if count == 1 {
			rdb.Expire(ctx, key, window)
		}

		if count > limit {
			ttl := rdb.TTL(ctx, key).Val()
			if ttl <= 0 {
				ttl = window
			}
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": message,
			})
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", limit-count))
		c.Next()
	}
}
