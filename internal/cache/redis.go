package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"mobilenest_back_end/internal/services"
)

// CartChannel et OrderChannel nomment les canaux pub/sub d'un utilisateur.
func CartChannel(userID uint) string  { return fmt.Sprintf("cart:%d", userID) }
func OrderChannel(userID uint) string { return fmt.Sprintf("orders:%d", userID) }

// RedisPublisher diffuse les événements panier et commande via Redis pub/sub.
type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) PublishCart(ctx context.Context, userID uint, event services.Event) error {
	return p.publish(ctx, CartChannel(userID), event)
}

func (p *RedisPublisher) PublishOrder(ctx context.Context, userID uint, event services.Event) error {
	return p.publish(ctx, OrderChannel(userID), event)
}

func (p *RedisPublisher) publish(ctx context.Context, channel string, event services.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, payload).Err()
}

// Subscribe ouvre un abonnement aux canaux panier et commandes de l'utilisateur.
// L'appelant doit fermer le PubSub retourné.
func (p *RedisPublisher) Subscribe(ctx context.Context, userID uint) *redis.PubSub {
	return p.client.Subscribe(ctx, CartChannel(userID), OrderChannel(userID))
}
