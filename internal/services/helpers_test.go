package services

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mobilenest_back_end/internal/database"
	"mobilenest_back_end/internal/models"
)

var testNow = time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	cart   []Event
	orders []Event
}

func (p *recordingPublisher) PublishCart(_ context.Context, _ uint, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cart = append(p.cart, e)
	return nil
}

func (p *recordingPublisher) PublishOrder(_ context.Context, _ uint, e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, e)
	return nil
}

func (p *recordingPublisher) orderEvents() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.orders...)
}

type testEnv struct {
	db     *gorm.DB
	deps   Deps
	events *recordingPublisher
	proofs *LocalProofStore
	dir    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	seq := 1000
	var mu sync.Mutex
	events := &recordingPublisher{}
	dir := t.TempDir()
	proofs := NewLocalProofStore(dir)

	return &testEnv{
		db:     db,
		events: events,
		proofs: proofs,
		dir:    dir,
		deps: Deps{
			DB:     db,
			Events: events,
			Proofs: proofs,
			Now:    func() time.Time { return testNow },
			Suffix: func() int {
				mu.Lock()
				defer mu.Unlock()
				seq++
				return seq
			},
		},
	}
}

func (e *testEnv) seedProduct(t *testing.T, id uint, name string, price int64) {
	t.Helper()
	require.NoError(t, e.db.Create(&models.Product{ID: id, Name: name, Price: price, Stock: 10, Category: "smartphone"}).Error)
}

func (e *testEnv) seedOrder(t *testing.T, userID uint, subtotal int64) *models.Transaction {
	t.Helper()
	order := models.Transaction{
		UserID:      userID,
		OrderNumber: newNumber("TRX", testNow, e.deps.Suffix),
		Subtotal:    subtotal,
		Status:      models.StatusAwaitingVerification,
		CreatedAt:   testNow,
	}
	order.Recalculate()
	require.NoError(t, e.db.Omit("Items", "Shipping").Create(&order).Error)
	return &order
}

func (e *testEnv) reloadOrder(t *testing.T, id uint) models.Transaction {
	t.Helper()
	var order models.Transaction
	require.NoError(t, e.db.First(&order, id).Error)
	return order
}

func sampleAddress() models.Address {
	return models.Address{
		RecipientName: "Budi Santoso",
		Phone:         "081234567890",
		Email:         "budi@example.com",
		Province:      "Jawa Barat",
		City:          "Bandung",
		District:      "Coblong",
		PostalCode:    "40132",
		FullAddress:   "Jl. Dago No. 10",
	}
}

// Plus petit PNG valide : signature + IHDR suffisent à la détection de type.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func memoryUpload(name string, data []byte) *ProofUpload {
	return &ProofUpload{
		Filename: name,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
