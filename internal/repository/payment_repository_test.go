package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPayment(providerPaymentID string) domain.Payment {
	return domain.Payment{
		ID:                uuid.New(),
		UserID:            "user-1",
		Amount:            100,
		Currency:          "RUB",
		Status:            domain.PaymentStatusPending,
		Provider:          domain.PaymentProviderSBP,
		ProviderPaymentID: providerPaymentID,
		SubscriptionTier:  domain.SubscriptionTierBasic,
		CreatedAt:         time.Now(),
	}
}

func TestInMemoryPaymentRepositoryCreateAndGet(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	payment := newPayment("sbp-1")
	created, err := repo.Create(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, created.ID)

	got, err := repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.ProviderPaymentID, got.ProviderPaymentID)

	got, err = repo.GetByProviderPaymentID(context.Background(), domain.PaymentProviderSBP, "sbp-1")
	require.NoError(t, err)
	assert.Equal(t, payment.ID, got.ID)
}

func TestInMemoryPaymentRepositoryRejectsInvalidPayment(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	payment := newPayment("sbp-1")
	payment.ID = uuid.Nil
	_, err := repo.Create(context.Background(), payment)
	assert.True(t, errors.Is(err, ErrInvalidData))

	payment = newPayment("sbp-2")
	payment.UserID = ""
	_, err = repo.Create(context.Background(), payment)
	assert.True(t, errors.Is(err, ErrInvalidData))
}

func TestInMemoryPaymentRepositoryDuplicateProviderID(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	_, err := repo.Create(context.Background(), newPayment("sbp-1"))
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), newPayment("sbp-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicate))
}

func TestInMemoryPaymentRepositoryNotFound(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	_, err := repo.GetByID(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = repo.GetByProviderPaymentID(context.Background(), domain.PaymentProviderSBP, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMarkCompletedTransitionsPendingOnly(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	payment := newPayment("sbp-1")
	_, err := repo.Create(context.Background(), payment)
	require.NoError(t, err)

	completedAt := time.Now()
	require.NoError(t, repo.MarkCompleted(context.Background(), payment.ID, completedAt))

	got, err := repo.GetByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, got.Status)
	require.NotNil(t, got.CompletedAt)

	// Повторное завершение сигнализирует о конкуренте
	err = repo.MarkCompleted(context.Background(), payment.ID, time.Now())
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestMarkCompletedUnknownPayment(t *testing.T) {
	repo := NewInMemoryPaymentRepository(logger.New(logger.DEBUG))

	err := repo.MarkCompleted(context.Background(), uuid.New(), time.Now())
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestInMemorySubscriptionRepositoryUpsert(t *testing.T) {
	repo := NewInMemorySubscriptionRepository(logger.New(logger.DEBUG))

	_, err := repo.GetByUserID(context.Background(), "user-1")
	assert.True(t, errors.Is(err, ErrNotFound))

	sub := domain.UserSubscription{
		UserID:         "user-1",
		Tier:           domain.SubscriptionTierBasic,
		StartDate:      time.Now(),
		EndDate:        time.Now().Add(30 * 24 * time.Hour),
		IsActive:       true,
		DemosRemaining: 10,
	}
	require.NoError(t, repo.Upsert(context.Background(), sub))

	got, err := repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionTierBasic, got.Tier)

	// Upsert заменяет запись, вторая подписка не появляется
	sub.Tier = domain.SubscriptionTierElite
	require.NoError(t, repo.Upsert(context.Background(), sub))

	got, err = repo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionTierElite, got.Tier)
}
