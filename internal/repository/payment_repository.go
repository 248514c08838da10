package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// PaymentRepository интерфейс для работы с платежами
type PaymentRepository interface {
	Create(ctx context.Context, payment domain.Payment) (domain.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error)
	GetByProviderPaymentID(ctx context.Context, provider domain.PaymentProvider, providerPaymentID string) (domain.Payment, error)
	GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error)

	// MarkCompleted атомарно переводит платеж из pending в completed.
	// Возвращает ErrConflict, если платеж уже не в состоянии pending —
	// это защита от гонки двух конкурентных успешных вебхуков.
	MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error
}

// InMemoryPaymentRepository реализация репозитория платежей в памяти
type InMemoryPaymentRepository struct {
	payments map[uuid.UUID]domain.Payment
	mutex    sync.RWMutex
	log      *logger.Logger
}

// NewInMemoryPaymentRepository создает новый репозиторий платежей в памяти
func NewInMemoryPaymentRepository(log *logger.Logger) *InMemoryPaymentRepository {
	return &InMemoryPaymentRepository{
		payments: make(map[uuid.UUID]domain.Payment),
		log:      log,
	}
}

// Create создает новый платеж
func (r *InMemoryPaymentRepository) Create(ctx context.Context, payment domain.Payment) (domain.Payment, error) {
	if payment.ID == uuid.Nil || payment.UserID == "" {
		return domain.Payment{}, ErrInvalidData
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	// Ровно одна запись на пару (provider, provider_payment_id)
	if payment.ProviderPaymentID != "" {
		for _, existing := range r.payments {
			if existing.Provider == payment.Provider && existing.ProviderPaymentID == payment.ProviderPaymentID {
				return domain.Payment{}, ErrDuplicate
			}
		}
	}

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	r.payments[payment.ID] = payment

	return payment, nil
}

// GetByID возвращает платеж по ID
func (r *InMemoryPaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (domain.Payment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	payment, exists := r.payments[id]
	if !exists {
		return domain.Payment{}, ErrNotFound
	}

	return payment, nil
}

// GetByProviderPaymentID возвращает платеж по идентификатору провайдера
func (r *InMemoryPaymentRepository) GetByProviderPaymentID(ctx context.Context, provider domain.PaymentProvider, providerPaymentID string) (domain.Payment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	for _, payment := range r.payments {
		if payment.Provider == provider && payment.ProviderPaymentID == providerPaymentID {
			return payment, nil
		}
	}

	return domain.Payment{}, ErrNotFound
}

// GetByUserID возвращает платежи пользователя
func (r *InMemoryPaymentRepository) GetByUserID(ctx context.Context, userID string) ([]domain.Payment, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	var payments []domain.Payment
	for _, payment := range r.payments {
		if payment.UserID == userID {
			payments = append(payments, payment)
		}
	}

	return payments, nil
}

// MarkCompleted переводит платеж из pending в completed
func (r *InMemoryPaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	payment, exists := r.payments[id]
	if !exists {
		return ErrNotFound
	}

	if payment.Status != domain.PaymentStatusPending {
		return ErrConflict
	}

	payment.Status = domain.PaymentStatusCompleted
	payment.CompletedAt = &completedAt
	r.payments[id] = payment

	return nil
}

// UpdateStatus обновляет статус платежа
func (r *InMemoryPaymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.PaymentStatus) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	payment, exists := r.payments[id]
	if !exists {
		return ErrNotFound
	}

	payment.Status = status
	r.payments[id] = payment

	return nil
}
