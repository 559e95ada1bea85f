package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/handlers"
	"mobilenest_back_end/internal/middleware"
)

// Options regroupe ce dont les middlewares ont besoin en plus des handlers.
type Options struct {
	JWTSecret   string
	CORSOrigins []string
	Redis       *redis.Client // nil : pas de rate limiting
	Logger      *zap.Logger
}

func RegisterRoutes(r *gin.Engine, h *handlers.Handler, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.Use(middleware.APIRateLimit(opts.Redis))

	// Catalogue public
	api.GET("/produk", h.Products)

	auth := middleware.AuthRequired(opts.JWTSecret, opts.Logger)
	secured := api.Group("")
	secured.Use(auth)
	{
		auditOrder := middleware.AuditCriticalActions(h.Audit, opts.Logger, "", audit.ResourceOrder)
		auditItem := middleware.AuditCriticalActions(h.Audit, opts.Logger, "", audit.ResourceOrderItem)
		auditShipping := middleware.AuditCriticalActions(h.Audit, opts.Logger, "", audit.ResourceShipping)
		auditPayment := middleware.AuditCriticalActions(h.Audit, opts.Logger, "", audit.ResourcePayment)

		// 🛒 Panier
		cartLimit := middleware.CartRateLimit(opts.Redis)
		secured.GET("/keranjang", h.Cart)
		secured.POST("/keranjang", cartLimit, h.Cart)
		secured.PUT("/keranjang", cartLimit, h.Cart)
		secured.DELETE("/keranjang", cartLimit, h.Cart)

		// 🧾 Commandes
		secured.GET("/transaksi", h.Transactions)
		secured.POST("/transaksi", auditOrder, h.Transactions)
		secured.PUT("/transaksi", auditOrder, h.Transactions)
		secured.DELETE("/transaksi", auditOrder, h.Transactions)

		// 📋 Lignes de commande
		secured.GET("/detail-transaksi", h.LineItems)
		secured.POST("/detail-transaksi", auditItem, h.LineItems)
		secured.PUT("/detail-transaksi", auditItem, h.LineItems)
		secured.DELETE("/detail-transaksi", auditItem, h.LineItems)

		// 📦 Livraisons
		secured.GET("/pengiriman", h.Shipping)
		secured.POST("/pengiriman", auditShipping, h.Shipping)
		secured.PUT("/pengiriman", auditShipping, h.Shipping)

		// 🧭 Checkout et 💳 paiement
		secured.POST("/checkout/shipping", h.CheckoutShipping)
		secured.GET("/checkout/summary", h.CheckoutSummary)
		secured.POST("/payment", middleware.PaymentRateLimit(opts.Redis), auditPayment, h.SubmitPayment)
	}

	// 🔌 Temps réel
	api.GET("/ws", middleware.TokenFromQuery, auth, h.Notifications)

	admin := api.Group("/admin")
	admin.Use(auth, middleware.RequireAdmin)
	{
		admin.GET("/audit", h.AuditLogs)
	}
}
