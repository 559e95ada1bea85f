package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mobilenest_back_end/internal/apperror"
	"mobilenest_back_end/internal/models"
)

func TestOrderService_CreateOrderFromCart(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	env.seedProduct(t, 2, "B", 30000)
	cart := NewCartService(env.deps)
	orders := NewOrderService(env.deps)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, 7, 2, 1)
	require.NoError(t, err)

	total, err := cart.GetCartTotal(ctx, 7)
	require.NoError(t, err)
	require.Equal(t, int64(130000), total)

	order, err := orders.CreateOrder(ctx, 7, CreateOrderInput{})
	require.NoError(t, err)

	assert.Equal(t, int64(130000), order.Subtotal)
	assert.Equal(t, int64(130000), order.Total)
	assert.Zero(t, order.Discount)
	assert.Zero(t, order.ShippingCost)
	assert.Equal(t, models.StatusAwaitingVerification, order.Status)
	assert.Regexp(t, `^TRX-20250314103000-\d{4}$`, order.OrderNumber)

	items, err := NewLineItemService(env.deps).GetOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	var subtotals []int64
	var sum int64
	for _, it := range items {
		subtotals = append(subtotals, it.Subtotal)
		sum += it.Subtotal
	}
	assert.ElementsMatch(t, []int64{100000, 30000}, subtotals)
	assert.Equal(t, order.Subtotal, sum)

	lines, err := cart.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)

	events := env.events.orderEvents()
	require.NotEmpty(t, events)
	assert.Equal(t, EventOrderCreated, events[len(events)-1].Type)
}

func TestOrderService_CreateOrderRollsBackWhenLineItemsFail(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	env.seedProduct(t, 2, "B", 30000)
	cart := NewCartService(env.deps)
	ctx := context.Background()

	_, err := cart.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	_, err = cart.AddItem(ctx, 7, 2, 1)
	require.NoError(t, err)

	require.NoError(t, env.db.Callback().Create().Before("gorm:create").
		Register("test:fail_line_items", func(db *gorm.DB) {
			if db.Statement.Table == "detail_transaksi" {
				_ = db.AddError(errors.New("disk full"))
			}
		}))

	_, err = NewOrderService(env.deps).CreateOrder(ctx, 7, CreateOrderInput{})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInfrastructure, apperror.KindOf(err))

	var orders int64
	env.db.Model(&models.Transaction{}).Count(&orders)
	assert.Zero(t, orders)

	total, err := cart.GetCartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(130000), total)
	assert.Empty(t, env.events.orderEvents())
}

func TestOrderService_CreateOrderSnapshotsPrices(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	ctx := context.Background()

	_, err := NewCartService(env.deps).AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)
	order, err := NewOrderService(env.deps).CreateOrder(ctx, 7, CreateOrderInput{})
	require.NoError(t, err)

	require.NoError(t, env.db.Table("produk").Where("id_produk = ?", 1).Update("harga", 99000).Error)

	items, err := NewLineItemService(env.deps).GetOrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(50000), items[0].UnitPrice)
	require.NotNil(t, items[0].Category)
	assert.Equal(t, "smartphone", *items[0].Category)
}

func TestOrderService_CreateOrderEmptyCart(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewOrderService(env.deps).CreateOrder(context.Background(), 7, CreateOrderInput{})

	assert.ErrorIs(t, err, apperror.ErrEmptyCart)
	var count int64
	env.db.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count)
}

func TestOrderService_UpdateStatusRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 100000)
	svc := NewOrderService(env.deps)

	_, err := svc.UpdateStatus(context.Background(), order.ID, "Bogus")

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	for _, s := range models.TransactionStatuses() {
		assert.Contains(t, err.Error(), string(s))
	}
	assert.Equal(t, models.StatusAwaitingVerification, env.reloadOrder(t, order.ID).Status)
}

func TestOrderService_UpdateStatusIsPermissive(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 100000)
	svc := NewOrderService(env.deps)
	ctx := context.Background()

	previous, err := svc.UpdateStatus(ctx, order.ID, "Completed")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaitingVerification, previous)

	previous, err = svc.UpdateStatus(ctx, order.ID, "Awaiting Verification")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, previous)

	_, err = svc.UpdateStatus(ctx, 999, "Verified")
	assert.ErrorIs(t, err, apperror.ErrTransactionNotFound)
}

func TestOrderService_VerifyPayment(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 100000)
	ctx := context.Background()

	shipping, err := NewShippingService(env.deps).CreateShipping(ctx, CreateShippingInput{
		TransactionID: &order.ID,
		UserID:        7,
		Address:       sampleAddress(),
		Method:        "regular",
	})
	require.NoError(t, err)
	require.NoError(t, env.db.Model(shipping).Update("status_pengiriman", models.ShippingCancelled).Error)

	verified, err := NewOrderService(env.deps).VerifyPayment(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusVerified, verified.Status)

	saved := env.reloadOrder(t, order.ID)
	assert.Equal(t, models.StatusVerified, saved.Status)
	require.NotNil(t, saved.PaidAt)
	require.NotNil(t, saved.ConfirmedAt)

	var record models.ShippingRecord
	require.NoError(t, env.db.First(&record, shipping.ID).Error)
	assert.Equal(t, models.ShippingAwaitingPickup, record.Status)
}

func TestOrderService_VerifyPaymentWithoutShippingChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 100000)

	_, err := NewOrderService(env.deps).VerifyPayment(context.Background(), order.ID)

	assert.ErrorIs(t, err, apperror.ErrShippingNotFound)
	saved := env.reloadOrder(t, order.ID)
	assert.Equal(t, models.StatusAwaitingVerification, saved.Status)
	assert.Nil(t, saved.PaidAt)
}

func TestOrderService_TotalInvariant(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 200000)
	svc := NewOrderService(env.deps)
	ctx := context.Background()

	total, err := svc.UpdateShippingCost(ctx, order.ID, 50000)
	require.NoError(t, err)
	assert.Equal(t, int64(250000), total)

	discounted, err := svc.ApplyDiscount(ctx, order.ID, 25000)
	require.NoError(t, err)
	assert.Equal(t, int64(225000), discounted.Total)

	saved := env.reloadOrder(t, order.ID)
	assert.Equal(t, saved.Subtotal-saved.Discount+saved.ShippingCost, saved.Total)

	_, err = svc.ApplyDiscount(ctx, order.ID, 300000)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	_, err = svc.ApplyDiscount(ctx, order.ID, -1)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestOrderService_UpdateShippingCostRejectsNegative(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 200000)
	svc := NewOrderService(env.deps)

	_, err := svc.UpdateShippingCost(context.Background(), order.ID, -50000)

	require.Error(t, err)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	assert.Equal(t, apperror.MsgShippingCostNegative, err.Error())
	saved := env.reloadOrder(t, order.ID)
	assert.Zero(t, saved.ShippingCost)
	assert.Equal(t, int64(200000), saved.Total)
}

func TestOrderService_ListOrders(t *testing.T) {
	env := newTestEnv(t)
	first := env.seedOrder(t, 7, 100000)
	env.seedOrder(t, 7, 200000)
	env.seedOrder(t, 8, 300000)
	svc := NewOrderService(env.deps)
	ctx := context.Background()

	_, err := NewLineItemService(env.deps).AddItem(ctx, AddLineItemInput{
		TransactionID: first.ID, ProductID: 1, ProductName: "A", UnitPrice: 50000, Quantity: 2,
	})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, first.ID, string(models.StatusCompleted))
	require.NoError(t, err)

	all, total, err := svc.GetUserOrders(ctx, 7, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, all, 2)

	completed, total, err := svc.GetUserOrders(ctx, 7, "Completed", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, completed, 1)
	assert.Equal(t, first.ID, completed[0].ID)
	assert.Equal(t, int64(1), completed[0].ItemCount)

	page, total, err := svc.ListOrders(ctx, OrderFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, page, 1)

	_, _, err = svc.GetUserOrders(ctx, 7, "Nope", 10, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestOrderService_GetAndDeleteOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, 7, 100000)
	svc := NewOrderService(env.deps)
	ctx := context.Background()

	_, err := NewLineItemService(env.deps).AddItem(ctx, AddLineItemInput{
		TransactionID: order.ID, ProductID: 1, ProductName: "A", UnitPrice: 100000, Quantity: 1,
	})
	require.NoError(t, err)
	shipping, err := NewShippingService(env.deps).CreateShipping(ctx, CreateShippingInput{
		TransactionID: &order.ID, UserID: 7, Address: sampleAddress(),
	})
	require.NoError(t, err)

	loaded, err := svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 1)
	require.NotNil(t, loaded.Shipping)
	assert.Equal(t, shipping.ID, loaded.Shipping.ID)

	require.NoError(t, svc.DeleteOrder(ctx, order.ID))
	_, err = svc.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, apperror.ErrTransactionNotFound)

	var items int64
	env.db.Model(&models.LineItem{}).Where("id_transaksi = ?", order.ID).Count(&items)
	assert.Zero(t, items)

	var record models.ShippingRecord
	require.NoError(t, env.db.First(&record, shipping.ID).Error)
	assert.Nil(t, record.TransactionID)

	assert.ErrorIs(t, svc.DeleteOrder(ctx, order.ID), apperror.ErrTransactionNotFound)
}

func TestOrderService_SearchRequiresQuery(t *testing.T) {
	env := newTestEnv(t)

	_, err := NewOrderService(env.deps).SearchOrders(context.Background(), "  ")

	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}
