package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenSubscriptionRepo всегда возвращает ошибку хранилища
type brokenSubscriptionRepo struct{}

func (r *brokenSubscriptionRepo) GetByUserID(ctx context.Context, userID string) (domain.UserSubscription, error) {
	return domain.UserSubscription{}, errors.New("storage is down")
}

func (r *brokenSubscriptionRepo) Upsert(ctx context.Context, sub domain.UserSubscription) error {
	return errors.New("storage is down")
}

func newSubscriptionService(t *testing.T) (SubscriptionService, *repository.InMemorySubscriptionRepository) {
	t.Helper()
	log := logger.New(logger.DEBUG)
	repo := repository.NewInMemorySubscriptionRepository(log)
	return NewSubscriptionService(repo, log), repo
}

func TestGetPlansCatalog(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	plans, err := svc.GetPlans(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 4)

	free := plans[domain.SubscriptionTierFree]
	assert.Equal(t, 2, free.Features.DemosPerMonth)
	assert.Zero(t, free.Price)
	assert.False(t, free.Features.DetailedAnalysis)

	basic := plans[domain.SubscriptionTierBasic]
	assert.Equal(t, 10, basic.Features.DemosPerMonth)
	assert.True(t, basic.Features.DetailedAnalysis)
	assert.False(t, basic.Features.AICoach)

	elite := plans[domain.SubscriptionTierElite]
	assert.True(t, elite.Features.AICoach)
	assert.True(t, elite.Features.TeamAnalysis)
	assert.Greater(t, elite.Price, plans[domain.SubscriptionTierPro].Price)
}

func TestGetUserSubscriptionDefaultsToFree(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	sub, err := svc.GetUserSubscription(context.Background(), "newcomer")
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionTierFree, sub.Tier)
	assert.True(t, sub.IsActive)
	assert.Equal(t, 2, sub.DemosRemaining)
}

func TestCreateSubscriptionPeriod(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	before := time.Now()
	sub, err := svc.CreateSubscription(context.Background(), "user-1", domain.SubscriptionTierPro)
	require.NoError(t, err)

	assert.Equal(t, domain.SubscriptionTierPro, sub.Tier)
	assert.True(t, sub.IsActive)
	assert.Equal(t, 50, sub.DemosRemaining)

	// Оплаченный период порядка месяца
	days := sub.EndDate.Sub(before).Hours() / 24
	assert.GreaterOrEqual(t, days, 25.0)
	assert.LessOrEqual(t, days, 32.0)
}

func TestCreateSubscriptionUnknownTier(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	_, err := svc.CreateSubscription(context.Background(), "user-1", domain.SubscriptionTier("platinum"))
	require.Error(t, err)
	assert.Contains(t, domain.MessageOf(err), "Failed to create subscription")
}

func TestCreateSubscriptionReplacesExisting(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	_, err := svc.CreateSubscription(context.Background(), "user-1", domain.SubscriptionTierBasic)
	require.NoError(t, err)

	_, err = svc.CreateSubscription(context.Background(), "user-1", domain.SubscriptionTierElite)
	require.NoError(t, err)

	sub, err := svc.GetUserSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SubscriptionTierElite, sub.Tier)
}

func TestExpiredSubscriptionReadAsInactive(t *testing.T) {
	log := logger.New(logger.DEBUG)
	repo := repository.NewInMemorySubscriptionRepository(log)
	svc := NewSubscriptionService(repo, log)

	expired := domain.UserSubscription{
		UserID:         "user-1",
		Tier:           domain.SubscriptionTierPro,
		StartDate:      time.Now().Add(-60 * 24 * time.Hour),
		EndDate:        time.Now().Add(-30 * 24 * time.Hour),
		IsActive:       true,
		DemosRemaining: 50,
	}
	require.NoError(t, repo.Upsert(context.Background(), expired))

	sub, err := svc.GetUserSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, sub.IsActive)
}

func TestCheckFeatureAccessByTier(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	_, err := svc.CreateSubscription(context.Background(), "basic-user", domain.SubscriptionTierBasic)
	require.NoError(t, err)

	assert.True(t, svc.CheckFeatureAccess(context.Background(), "basic-user", "detailed_analysis"))
	assert.False(t, svc.CheckFeatureAccess(context.Background(), "basic-user", "ai_coach"))

	// Пользователь без подписки получает возможности FREE
	assert.False(t, svc.CheckFeatureAccess(context.Background(), "newcomer", "detailed_analysis"))
}

func TestCheckFeatureAccessExpiredDowngradesToFree(t *testing.T) {
	log := logger.New(logger.DEBUG)
	repo := repository.NewInMemorySubscriptionRepository(log)
	svc := NewSubscriptionService(repo, log)

	expired := domain.UserSubscription{
		UserID:    "user-1",
		Tier:      domain.SubscriptionTierElite,
		StartDate: time.Now().Add(-60 * 24 * time.Hour),
		EndDate:   time.Now().Add(-30 * 24 * time.Hour),
		IsActive:  true,
	}
	require.NoError(t, repo.Upsert(context.Background(), expired))

	assert.False(t, svc.CheckFeatureAccess(context.Background(), "user-1", "ai_coach"))
}

func TestCheckFeatureAccessNeverFails(t *testing.T) {
	log := logger.New(logger.DEBUG)
	svc := NewSubscriptionService(&brokenSubscriptionRepo{}, log)

	// Сбой хранилища трактуется как отказ в доступе, не паника и не ошибка
	assert.False(t, svc.CheckFeatureAccess(context.Background(), "user-1", "detailed_analysis"))
	assert.False(t, svc.CheckFeatureAccess(context.Background(), "user-1", "unknown_feature"))
}

func TestCheckFeatureAccessUnknownFeature(t *testing.T) {
	svc, _ := newSubscriptionService(t)

	_, err := svc.CreateSubscription(context.Background(), "user-1", domain.SubscriptionTierElite)
	require.NoError(t, err)

	assert.False(t, svc.CheckFeatureAccess(context.Background(), "user-1", "time_travel"))
}
