package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	userSubscriptionKeyPrefix = "user_subscription:"

	// TTL для кэша
	defaultCacheTTL = 15 * time.Minute
)

// RedisSubscriptionCache кеширует подписки пользователей в Redis
type RedisSubscriptionCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisSubscriptionCache создает новый кеш подписок
func NewRedisSubscriptionCache(client *redis.Client, log *logger.Logger) (*RedisSubscriptionCache, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Errorw("Failed to connect to Redis", "error", err)
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSubscriptionCache{
		client: client,
		log:    log,
	}, nil
}

// Get получает подписку пользователя из кеша.
// Промах кеша возвращает (nil, nil), это не ошибка.
func (c *RedisSubscriptionCache) Get(ctx context.Context, userID string) (*domain.UserSubscription, error) {
	key := userSubscriptionKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get subscription from cache: %w", err)
	}

	var sub domain.UserSubscription
	if err := json.Unmarshal(data, &sub); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached subscription: %w", err)
	}

	return &sub, nil
}

// Set кеширует подписку пользователя
func (c *RedisSubscriptionCache) Set(ctx context.Context, sub domain.UserSubscription) error {
	key := userSubscriptionKeyPrefix + sub.UserID

	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription: %w", err)
	}

	if err := c.client.Set(ctx, key, data, defaultCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache subscription: %w", err)
	}

	return nil
}

// Invalidate удаляет подписку пользователя из кеша
func (c *RedisSubscriptionCache) Invalidate(ctx context.Context, userID string) error {
	key := userSubscriptionKeyPrefix + userID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate subscription cache: %w", err)
	}

	return nil
}
