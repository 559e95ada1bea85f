// Package handlers expose l'API JSON de MobileNest : panier, commandes, lignes de
// commande, livraisons, paiement, checkout et catalogue.
package handlers

import (
	"context"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/database"
	"mobilenest_back_end/internal/services"
)

// Subscriber ouvre le flux d'événements temps réel d'un utilisateur.
type Subscriber interface {
	Subscribe(ctx context.Context, userID uint) *redis.PubSub
}

// ProofLinker produit une URL temporaire vers une preuve de paiement stockée à distance.
type ProofLinker interface {
	SignedURL(ctx context.Context, location string, duration time.Duration) (string, error)
}

type Handler struct {
	Carts     *services.CartService
	Orders    *services.OrderService
	Items     *services.LineItemService
	Shipments *services.ShippingService
	Payments  *services.PaymentService
	Catalog   *services.CatalogService

	Proofs   services.ProofStore
	Sessions sessions.Store
	Stream   Subscriber
	Audit    audit.Logger
	Conns    *database.Connections
	Logger   *zap.Logger

	// AllowedOrigins filtre l'origine des connexions WebSocket ; vide, tout est accepté.
	AllowedOrigins []string
}

// Options regroupe les collaborateurs optionnels du Handler.
type Options struct {
	ProductCache   services.ProductCache
	Sessions       sessions.Store
	Stream         Subscriber
	Audit          audit.Logger
	Conns          *database.Connections
	AllowedOrigins []string
}

func New(deps services.Deps, opts Options) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	auditLog := opts.Audit
	if auditLog == nil {
		auditLog = audit.NewMemoryLogger()
	}

	return &Handler{
		Carts:          services.NewCartService(deps),
		Orders:         services.NewOrderService(deps),
		Items:          services.NewLineItemService(deps),
		Shipments:      services.NewShippingService(deps),
		Payments:       services.NewPaymentService(deps),
		Catalog:        services.NewCatalogService(deps, opts.ProductCache),
		Proofs:         deps.Proofs,
		Sessions:       opts.Sessions,
		Stream:         opts.Stream,
		Audit:          auditLog,
		Conns:          opts.Conns,
		Logger:         logger,
		AllowedOrigins: opts.AllowedOrigins,
	}
}
