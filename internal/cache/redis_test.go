package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobilenest_back_end/internal/models"
	"mobilenest_back_end/internal/services"
)

func newTestClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisPublisher_DeliversToSubscriber(t *testing.T) {
	client := newTestClient(t)
	pub := NewRedisPublisher(client)
	ctx := context.Background()

	sub := pub.Subscribe(ctx, 7)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, pub.PublishOrder(ctx, 7, services.Event{Type: services.EventOrderCreated, UserID: 7}))

	select {
	case msg := <-sub.Channel():
		assert.Equal(t, "orders:7", msg.Channel)
		var event services.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &event))
		assert.Equal(t, services.EventOrderCreated, event.Type)
		assert.Equal(t, uint(7), event.UserID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestProductCache_RoundTripAndInvalidate(t *testing.T) {
	client := newTestClient(t)
	c := NewProductCache(client)
	ctx := context.Background()

	_, ok := c.GetProduct(ctx, 1)
	assert.False(t, ok)

	c.SetProduct(ctx, models.Product{ID: 1, Name: "Pixel 8", Price: 9000000})
	p, ok := c.GetProduct(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, "Pixel 8", p.Name)

	require.NoError(t, c.InvalidateProduct(ctx, 1))
	_, ok = c.GetProduct(ctx, 1)
	assert.False(t, ok)
}
