package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore хранилище счетчиков запросов с TTL
type CounterStore interface {
	// Incr атомарно увеличивает счетчик и возвращает новое значение.
	// TTL выставляется при первой записи ключа.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// RedisCounterStore счетчики на базе Redis, разделяемые между процессами
type RedisCounterStore struct {
	client *redis.Client
}

// NewRedisCounterStore создает хранилище счетчиков на Redis
func NewRedisCounterStore(client *redis.Client) *RedisCounterStore {
	return &RedisCounterStore{client: client}
}

// Incr увеличивает счетчик в Redis
func (s *RedisCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	if count == 1 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return count, err
		}
	}

	return count, nil
}

// memoryCounter счетчик с временем истечения
type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterStore счетчики в памяти процесса.
// Подходит только для однопроцессных развертываний: счетчики
// не координируются между экземплярами сервиса.
type MemoryCounterStore struct {
	counters map[string]memoryCounter
	mutex    sync.Mutex
	now      func() time.Time
}

// NewMemoryCounterStore создает хранилище счетчиков в памяти
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

// Incr увеличивает счетчик в памяти
func (s *MemoryCounterStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := s.now()

	counter, exists := s.counters[key]
	if !exists || now.After(counter.expiresAt) {
		counter = memoryCounter{count: 0, expiresAt: now.Add(ttl)}
	}

	counter.count++
	s.counters[key] = counter

	// Попутная уборка истекших ключей, чтобы карта не росла бесконечно
	if len(s.counters) > 10000 {
		for k, c := range s.counters {
			if now.After(c.expiresAt) {
				delete(s.counters, k)
			}
		}
	}

	return counter.count, nil
}
