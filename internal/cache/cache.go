package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"mobilenest_back_end/internal/models"
)

const ProductCacheTTL = 10 * time.Minute

// ProductCache met en cache les fiches produit du catalogue dans Redis.
// Le panier et le checkout lisent toujours les prix en base.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProductCache(client *redis.Client) *ProductCache {
	return &ProductCache{client: client, ttl: ProductCacheTTL}
}

func productKey(id uint) string {
	return "product:" + strconv.FormatUint(uint64(id), 10)
}

func (c *ProductCache) GetProduct(ctx context.Context, id uint) (*models.Product, bool) {
	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		return nil, false
	}
	var p models.Product
	if json.Unmarshal(data, &p) != nil {
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) SetProduct(ctx context.Context, p models.Product) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	c.client.Set(ctx, productKey(p.ID), data, c.ttl)
}

// InvalidateProduct supprime la fiche en cache, à appeler quand le catalogue change.
func (c *ProductCache) InvalidateProduct(ctx context.Context, id uint) error {
	return c.client.Del(ctx, productKey(id)).Err()
}
