package repository

import (
	"context"
	"sync"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// SubscriptionRepository интерфейс для работы с подписками пользователей
type SubscriptionRepository interface {
	// GetByUserID возвращает текущую подписку пользователя
	GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error)

	// Upsert создает или заменяет подписку пользователя.
	// Не более одной активной подписки на пользователя.
	Upsert(ctx context.Context, sub domain.UserSubscription) error
}

// InMemorySubscriptionRepository реализация репозитория подписок в памяти
type InMemorySubscriptionRepository struct {
	subscriptions map[string]domain.UserSubscription
	mutex         sync.RWMutex
	log           *logger.Logger
}

// NewInMemorySubscriptionRepository создает новый репозиторий подписок в памяти
func NewInMemorySubscriptionRepository(log *logger.Logger) *InMemorySubscriptionRepository {
	return &InMemorySubscriptionRepository{
		subscriptions: make(map[string]domain.UserSubscription),
		log:           log,
	}
}

// GetByUserID возвращает подписку пользователя
func (r *InMemorySubscriptionRepository) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	sub, exists := r.subscriptions[userID]
	if !exists {
		return domain.UserSubscription{}, ErrNotFound
	}

	return sub, nil
}

// Upsert создает или заменяет подписку пользователя
func (r *InMemorySubscriptionRepository) Upsert(ctx context.Context, sub domain.UserSubscription) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.subscriptions[sub.UserID] = sub

	return nil
}
