// Package audit trace les mutations sensibles des commandes et livraisons.
package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"mobilenest_back_end/internal/database"
	"mobilenest_back_end/internal/models"
)

// Actions d'audit prédéfinies
const (
	ActionOrderCreate      = "order.create"
	ActionOrderStatus      = "order.status"
	ActionOrderVerify      = "order.verify_payment"
	ActionOrderDiscount    = "order.discount"
	ActionOrderDelete      = "order.delete"
	ActionOrderItemUpdate  = "order_item.update"
	ActionShippingCreate   = "shipping.create"
	ActionShippingAddress  = "shipping.address"
	ActionShippingMethod   = "shipping.method"
	ActionShippingStatus   = "shipping.status"
	ActionPaymentSubmitted = "payment.submitted"
)

// Resources d'audit
const (
	ResourceOrder     = "order"
	ResourceOrderItem = "order_item"
	ResourceShipping  = "shipping"
	ResourcePayment   = "payment"
)

// Logger enregistre et relit le journal d'audit.
type Logger interface {
	Record(ctx context.Context, entry models.AuditLog) error
	List(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error)
}

// NewEntry prépare une entrée horodatée ; les valeurs sont sérialisées en JSON.
func NewEntry(action, resource, resourceID string, oldValue, newValue interface{}) models.AuditLog {
	return models.AuditLog{
		ID:         gocql.TimeUUID(),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		OldValue:   marshalValue(oldValue),
		NewValue:   marshalValue(newValue),
		Success:    true,
		Timestamp:  time.Now(),
	}
}

func marshalValue(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// --- ScyllaDB ---

type ScyllaLogger struct {
	session *gocql.Session
}

func NewScyllaLogger(session *gocql.Session) *ScyllaLogger {
	return &ScyllaLogger{session: session}
}

func (l *ScyllaLogger) Record(ctx context.Context, e models.AuditLog) error {
	return l.session.Query(database.CQLInsertAuditLog,
		e.Resource, e.ResourceID, e.ID, e.UserID, e.Action, e.OldValue, e.NewValue,
		e.IPAddress, e.UserAgent, e.Success, e.ErrorMsg, e.Timestamp,
	).WithContext(ctx).Exec()
}

func (l *ScyllaLogger) List(ctx context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	iter := l.session.Query(database.CQLSelectAuditByResource, resource, resourceID, limit).
		WithContext(ctx).Iter()

	var logs []models.AuditLog
	var e models.AuditLog
	for iter.Scan(&e.ID, &e.UserID, &e.Action, &e.OldValue, &e.NewValue,
		&e.IPAddress, &e.UserAgent, &e.Success, &e.ErrorMsg, &e.Timestamp) {
		e.Resource = resource
		e.ResourceID = resourceID
		logs = append(logs, e)
		e = models.AuditLog{}
	}
	if err := iter.Close(); err != nil {
		return nil, err
	}
	return logs, nil
}

// --- Mémoire ---

// MemoryLogger garde les entrées en mémoire, utilisé quand ScyllaDB n'est pas configuré.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Record(_ context.Context, e models.AuditLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

// List retourne les entrées de la ressource, les plus récentes d'abord.
func (l *MemoryLogger) List(_ context.Context, resource, resourceID string, limit int) ([]models.AuditLog, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []models.AuditLog
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.Resource == resource && e.ResourceID == resourceID {
			out = append(out, e)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
