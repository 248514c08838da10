package repository

import (
	"context"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// CachedSubscriptionRepository реализует SubscriptionRepository с кешированием.
// Ошибки кеша не прерывают запрос: источником истины остается БД.
type CachedSubscriptionRepository struct {
	repo  SubscriptionRepository
	cache *RedisSubscriptionCache
	log   *logger.Logger
}

// NewCachedSubscriptionRepository создает новый репозиторий с кешированием
func NewCachedSubscriptionRepository(
	repo SubscriptionRepository,
	cache *RedisSubscriptionCache,
	log *logger.Logger,
) SubscriptionRepository {
	return &CachedSubscriptionRepository{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// GetByUserID возвращает подписку пользователя (сначала из кеша, потом из БД)
func (r *CachedSubscriptionRepository) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	cached, err := r.cache.Get(ctx, userID)
	if err != nil {
		r.log.Warnw("Error getting subscription from cache", "error", err, "user_id", userID)
	}
	if cached != nil {
		return *cached, nil
	}

	sub, err := r.repo.GetByUserID(ctx, userID)
	if err != nil {
		return domain.UserSubscription{}, err
	}

	if err := r.cache.Set(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after fetching", "error", err, "user_id", userID)
	}

	return sub, nil
}

// Upsert сохраняет подписку в БД и обновляет кеш
func (r *CachedSubscriptionRepository) Upsert(ctx context.Context, sub domain.UserSubscription) error {
	if err := r.repo.Upsert(ctx, sub); err != nil {
		return err
	}

	if err := r.cache.Set(ctx, sub); err != nil {
		r.log.Warnw("Failed to cache subscription after upsert", "error", err, "user_id", sub.UserID)
		if invErr := r.cache.Invalidate(ctx, sub.UserID); invErr != nil {
			r.log.Warnw("Failed to invalidate stale subscription cache", "error", invErr, "user_id", sub.UserID)
		}
	}

	return nil
}
