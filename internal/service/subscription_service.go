package service

import (
	"context"
	"errors"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// subscriptionPeriod длительность оплаченного периода подписки
const subscriptionPeriod = 30 * 24 * time.Hour

// SubscriptionService интерфейс сервиса для работы с подписками
type SubscriptionService interface {
	GetPlans(ctx context.Context) (map[domain.SubscriptionTier]domain.SubscriptionPlan, error)
	GetUserSubscription(ctx context.Context, userID string) (domain.UserSubscription, error)
	CreateSubscription(ctx context.Context, userID string, tier domain.SubscriptionTier) (domain.UserSubscription, error)
	CheckFeatureAccess(ctx context.Context, userID string, featureName string) bool
}

type subscriptionService struct {
	repo  repository.SubscriptionRepository
	plans map[domain.SubscriptionTier]domain.SubscriptionPlan
	log   *logger.Logger
}

// NewSubscriptionService создает новый сервис для работы с подписками
func NewSubscriptionService(repo repository.SubscriptionRepository, log *logger.Logger) SubscriptionService {
	return &subscriptionService{
		repo:  repo,
		plans: defaultPlans(),
		log:   log,
	}
}

// defaultPlans возвращает фиксированный каталог из четырех уровней подписки
func defaultPlans() map[domain.SubscriptionTier]domain.SubscriptionPlan {
	return map[domain.SubscriptionTier]domain.SubscriptionPlan{
		domain.SubscriptionTierFree: {
			Tier:     domain.SubscriptionTierFree,
			Price:    0,
			Currency: "USD",
			Features: domain.SubscriptionFeatures{
				DemosPerMonth: 2,
			},
			Description: "2 demo analyses per month with basic match stats",
		},
		domain.SubscriptionTierBasic: {
			Tier:     domain.SubscriptionTierBasic,
			Price:    4.99,
			Currency: "USD",
			Features: domain.SubscriptionFeatures{
				DemosPerMonth:    10,
				DetailedAnalysis: true,
				TeammateSearch:   true,
			},
			Description: "10 demo analyses per month, detailed analysis and teammate search",
		},
		domain.SubscriptionTierPro: {
			Tier:     domain.SubscriptionTierPro,
			Price:    9.99,
			Currency: "USD",
			Features: domain.SubscriptionFeatures{
				DemosPerMonth:         50,
				DetailedAnalysis:      true,
				TeammateSearch:        true,
				CustomRecommendations: true,
				PrioritySupport:       true,
			},
			Description: "50 demo analyses per month, custom recommendations and priority support",
		},
		domain.SubscriptionTierElite: {
			Tier:     domain.SubscriptionTierElite,
			Price:    19.99,
			Currency: "USD",
			Features: domain.SubscriptionFeatures{
				DemosPerMonth:         999,
				DetailedAnalysis:      true,
				TeammateSearch:        true,
				CustomRecommendations: true,
				PrioritySupport:       true,
				AICoach:               true,
				TeamAnalysis:          true,
			},
			Description: "Unlimited demo analyses, AI coach and team analysis",
		},
	}
}

// GetPlans возвращает полный каталог планов подписки
func (s *subscriptionService) GetPlans(ctx context.Context) (map[domain.SubscriptionTier]domain.SubscriptionPlan, error) {
	if s.plans == nil {
		s.log.Error("Subscription plans catalog is missing")
		return nil, domain.NewInternalError("Failed to get subscription plans", domain.ErrInternal)
	}

	return s.plans, nil
}

// GetUserSubscription возвращает текущую подписку пользователя.
// При отсутствии записи возвращается подписка уровня FREE.
func (s *subscriptionService) GetUserSubscription(ctx context.Context, userID string) (domain.UserSubscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return s.defaultSubscription(userID), nil
		}
		s.log.Error("Failed to get subscription for user %s: %v", userID, err)
		return domain.UserSubscription{}, domain.NewInternalError("Failed to get user subscription", err)
	}

	// Истечение вычисляется при чтении, записи не удаляются
	if !sub.EndDate.IsZero() && time.Now().After(sub.EndDate) {
		sub.IsActive = false
	}

	return sub, nil
}

// defaultSubscription возвращает подписку FREE по умолчанию
func (s *subscriptionService) defaultSubscription(userID string) domain.UserSubscription {
	now := time.Now()
	freePlan := s.plans[domain.SubscriptionTierFree]

	return domain.UserSubscription{
		UserID:         userID,
		Tier:           domain.SubscriptionTierFree,
		StartDate:      now,
		EndDate:        now.Add(subscriptionPeriod),
		IsActive:       true,
		DemosRemaining: freePlan.Features.DemosPerMonth,
	}
}

// CreateSubscription создает или продлевает подписку пользователя на уровень tier
func (s *subscriptionService) CreateSubscription(ctx context.Context, userID string, tier domain.SubscriptionTier) (domain.UserSubscription, error) {
	plan, ok := s.plans[tier]
	if !ok {
		// Отсутствие уровня в каталоге — ошибка программиста, не клиента
		s.log.Error("Subscription tier %s missing from catalog", tier)
		return domain.UserSubscription{}, domain.NewInternalError("Failed to create subscription", domain.ErrInternal)
	}

	now := time.Now()
	sub := domain.UserSubscription{
		UserID:         userID,
		Tier:           tier,
		StartDate:      now,
		EndDate:        now.Add(subscriptionPeriod),
		IsActive:       true,
		DemosRemaining: plan.Features.DemosPerMonth,
	}

	if err := s.repo.Upsert(ctx, sub); err != nil {
		s.log.Error("Failed to save subscription for user %s: %v", userID, err)
		return domain.UserSubscription{}, domain.NewInternalError("Failed to create subscription", err)
	}

	s.log.Info("Created subscription for user %s: tier %s until %s", userID, tier, sub.EndDate.Format(time.RFC3339))
	return sub, nil
}

// CheckFeatureAccess проверяет доступ пользователя к именованной возможности.
// Никогда не возвращает ошибку: любой сбой трактуется как отказ в доступе.
func (s *subscriptionService) CheckFeatureAccess(ctx context.Context, userID string, featureName string) bool {
	sub, err := s.GetUserSubscription(ctx, userID)
	if err != nil {
		s.log.Warn("Feature access check failed for user %s, denying: %v", userID, err)
		return false
	}

	tier := sub.Tier
	if !sub.IsActive {
		// Истекшая подписка дает только возможности FREE
		tier = domain.SubscriptionTierFree
	}

	plan, ok := s.plans[tier]
	if !ok {
		return false
	}

	return plan.Features.HasFeature(featureName)
}
