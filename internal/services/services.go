// Package services porte la logique du cycle de commande : panier, commandes,
// lignes de commande, livraisons et dépôt des preuves de paiement.
package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

// Types d'événements publiés sur les canaux cart:<user> et orders:<user>.
const (
	EventCartUpdated      = "cart_updated"
	EventCartCleared      = "cart_cleared"
	EventOrderCreated     = "order_created"
	EventOrderStatus      = "order_status_changed"
	EventShippingStatus   = "shipping_status_changed"
	EventPaymentSubmitted = "payment_submitted"
)

// Event est le message diffusé aux clients connectés en WebSocket.
type Event struct {
	Type   string      `json:"type"`
	UserID uint        `json:"id_user"`
	Data   interface{} `json:"data,omitempty"`
	At     time.Time   `json:"at"`
}

// Publisher diffuse les changements de panier et de commande.
type Publisher interface {
	PublishCart(ctx context.Context, userID uint, event Event) error
	PublishOrder(ctx context.Context, userID uint, event Event) error
}

type nopPublisher struct{}

func (nopPublisher) PublishCart(context.Context, uint, Event) error  { return nil }
func (nopPublisher) PublishOrder(context.Context, uint, Event) error { return nil }

// NopPublisher est utilisé quand Redis n'est pas configuré.
var NopPublisher Publisher = nopPublisher{}

// OrderIndexer alimente la recherche de commandes.
type OrderIndexer interface {
	IndexOrder(ctx context.Context, order models.Transaction) error
	SearchOrders(ctx context.Context, query string) ([]map[string]interface{}, error)
}

type nopIndexer struct{}

func (nopIndexer) IndexOrder(context.Context, models.Transaction) error { return nil }
func (nopIndexer) SearchOrders(context.Context, string) ([]map[string]interface{}, error) {
	return nil, apperror.Domain("Order search is not available")
}

var NopIndexer OrderIndexer = nopIndexer{}

// Mailer envoie les e-mails transactionnels.
type Mailer interface {
	SendPaymentReceived(ctx context.Context, to string, order models.Transaction) error
	SendOrderStatus(ctx context.Context, to string, order models.Transaction) error
}

type nopMailer struct{}

func (nopMailer) SendPaymentReceived(context.Context, string, models.Transaction) error { return nil }
func (nopMailer) SendOrderStatus(context.Context, string, models.Transaction) error     { return nil }

var NopMailer Mailer = nopMailer{}

// Deps regroupe les collaborateurs partagés par les services.
type Deps struct {
	DB      *gorm.DB
	Events  Publisher
	Index   OrderIndexer
	Mailer  Mailer
	Proofs  ProofStore
	Logger  *zap.Logger
	Now     func() time.Time
	Suffix  func() int
	Timeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Events == nil {
		d.Events = NopPublisher
	}
	if d.Index == nil {
		d.Index = NopIndexer
	}
	if d.Mailer == nil {
		d.Mailer = NopMailer
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Suffix == nil {
		d.Suffix = randomSuffix
	}
	if d.Timeout == 0 {
		d.Timeout = 10 * time.Second
	}
	return d
}

func randomSuffix() int {
	return rand.Intn(9000) + 1000
}

// newNumber construit un identifiant lisible PREFIX-AAAAMMJJHHMMSS-NNNN.
func newNumber(prefix string, now time.Time, suffix func() int) string {
	return fmt.Sprintf("%s-%s-%04d", prefix, now.Format("20060102150405"), suffix())
}

// notFoundOr traduit ErrRecordNotFound en erreur métier et le reste en erreur d'infrastructure.
func notFoundOr(err error, notFound *apperror.Error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return apperror.Infrastructure(op, err)
}

// asAppError laisse passer les erreurs déjà typées et enveloppe les autres.
func asAppError(err error, op string) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Infrastructure(op, err)
}

// background détache les effets post-commit du contexte de la requête.
func (d Deps) background(fn func(ctx context.Context)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.Timeout)
		defer cancel()
		fn(ctx)
	}()
}
