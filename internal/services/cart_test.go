package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilenest_back_end/internal/apperror"
)

func TestCartService_AddItemAccumulatesQuantity(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "Redmi Note 13", 50000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	item, err := svc.AddItem(ctx, 7, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	lines, err := svc.GetCart(ctx, 7)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Redmi Note 13", lines[0].ProductName)
	assert.NotEmpty(t, env.events.cart)
}

func TestCartService_AddItemRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "Redmi Note 13", 50000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 0)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.AddItem(ctx, 7, 99, 1)
	assert.ErrorIs(t, err, apperror.ErrProductNotFound)
}

func TestCartService_TotalUsesLivePrices(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	env.seedProduct(t, 2, "B", 30000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 7, 2, 1)
	require.NoError(t, err)

	total, err := svc.GetCartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(130000), total)

	require.NoError(t, env.db.Table("produk").Where("id_produk = ?", 2).Update("harga", 45000).Error)
	total, err = svc.GetCartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(145000), total)

	count, err := svc.GetItemCount(ctx, 7)
	require.NoError(t, err)
	qty, err := svc.GetTotalQuantity(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(3), qty)
}

func TestCartService_UpdateQuantityZeroRemoves(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, 7, 1, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateQuantity(ctx, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	removed, err := svc.UpdateQuantity(ctx, item.ID, 0)
	require.NoError(t, err)
	assert.Nil(t, removed)

	exists, err := svc.ItemExists(ctx, 7, 1)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = svc.UpdateQuantity(ctx, item.ID, 3)
	assert.ErrorIs(t, err, apperror.ErrCartItemNotFound)
}

func TestCartService_RemoveAndClearAreIdempotent(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	require.NoError(t, svc.RemoveItem(ctx, 12345))
	require.NoError(t, svc.ClearCart(ctx, 7))

	_, err := svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)
	require.NoError(t, svc.ClearCart(ctx, 7))
	require.NoError(t, svc.ClearCart(ctx, 7))

	lines, err := svc.GetCart(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, lines)

	total, err := svc.GetCartTotal(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestCartService_CartsAreIsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	env.seedProduct(t, 1, "A", 50000)
	svc := NewCartService(env.deps)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, 7, 1, 1)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, 8, 1, 3)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(ctx, 7))

	qty, err := svc.GetTotalQuantity(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(3), qty)
}
