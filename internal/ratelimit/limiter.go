package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// Config конфигурация лимитера запросов
type Config struct {
	RequestsPerMinute int
	RequestsPerDay    int

	// BypassIdentity идентификатор, для которого лимиты не применяются
	// (служебные тестовые аккаунты). Проверяется до инкремента счетчиков.
	BypassIdentity string
}

// Limiter лимитер запросов со скользящим окном по минутам и дням
type Limiter struct {
	cfg   Config
	store CounterStore
	log   *logger.Logger
	now   func() time.Time
}

// NewLimiter создает новый лимитер поверх переданного хранилища счетчиков
func NewLimiter(cfg Config, store CounterStore, log *logger.Logger) *Limiter {
	return &Limiter{
		cfg:   cfg,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// Check проверяет лимиты для идентичности и операции.
// Возвращает 429-ошибку с именованным порогом при превышении.
// Ошибки хранилища не блокируют запрос: лимитер деградирует в fail-open.
func (l *Limiter) Check(ctx context.Context, identity, operation string) error {
	if l.cfg.BypassIdentity != "" && identity == l.cfg.BypassIdentity {
		return nil
	}

	now := l.now()

	if l.cfg.RequestsPerMinute > 0 {
		key := fmt.Sprintf("rate_limit:%s:%s:minute:%d", identity, operation, now.Unix()/60)
		count, err := l.store.Incr(ctx, key, time.Minute)
		if err != nil {
			l.log.Warn("Rate limit store unavailable, allowing request: %v", err)
			return nil
		}
		if count > int64(l.cfg.RequestsPerMinute) {
			return domain.NewRateLimitError(
				fmt.Sprintf("Rate limit exceeded: %d requests per minute", l.cfg.RequestsPerMinute))
		}
	}

	if l.cfg.RequestsPerDay > 0 {
		key := fmt.Sprintf("rate_limit:%s:%s:day:%s", identity, operation, now.Format("2006-01-02"))
		count, err := l.store.Incr(ctx, key, 24*time.Hour)
		if err != nil {
			l.log.Warn("Rate limit store unavailable, allowing request: %v", err)
			return nil
		}
		if count > int64(l.cfg.RequestsPerDay) {
			return domain.NewRateLimitError(
				fmt.Sprintf("Rate limit exceeded: %d requests per day", l.cfg.RequestsPerDay))
		}
	}

	return nil
}
