package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/policy"
	"github.com/pat1one/faceit-ai-bot/internal/provider"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// EventPublisher публикует события жизненного цикла платежей
type EventPublisher interface {
	PublishPaymentCreated(ctx context.Context, payment domain.Payment) error
	PublishPaymentCompleted(ctx context.Context, payment domain.Payment) error
}

// PaymentMetrics метрики, которые записывает платежный сервис
type PaymentMetrics interface {
	IncPaymentCreated(provider, currency string)
	IncPaymentCompleted(provider, currency string)
	IncPaymentFailed(provider, currency string)
	ObservePaymentAmount(amount float64, currency string, status string)
	IncWebhookFailure(provider string)
	IncWebhookIgnored(provider, reason string)
	IncWebhookAmountMismatch(provider string)
}

// PaymentService интерфейс сервиса для работы с платежами
type PaymentService interface {
	Create(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error)
	CheckStatus(ctx context.Context, paymentID string, providerName domain.PaymentProvider) (domain.PaymentStatusResponse, error)
	ProcessWebhook(ctx context.Context, providerName domain.PaymentProvider, payload []byte) (domain.WebhookOutcome, error)
}

type paymentService struct {
	repo          repository.PaymentRepository
	subscriptions SubscriptionService
	policy        *policy.RegionPolicy
	providers     *provider.Registry
	webhooks      map[domain.PaymentProvider]WebhookHandler
	publisher     EventPublisher
	metrics       PaymentMetrics
	websiteURL    string
	log           *logger.Logger
}

// NewPaymentService создает новый сервис для работы с платежами.
// publisher и metrics могут быть nil (тестовые окружения).
func NewPaymentService(
	repo repository.PaymentRepository,
	subscriptions SubscriptionService,
	regionPolicy *policy.RegionPolicy,
	providers *provider.Registry,
	publisher EventPublisher,
	paymentMetrics PaymentMetrics,
	websiteURL string,
	log *logger.Logger,
) PaymentService {
	s := &paymentService{
		repo:          repo,
		subscriptions: subscriptions,
		policy:        regionPolicy,
		providers:     providers,
		publisher:     publisher,
		metrics:       paymentMetrics,
		websiteURL:    websiteURL,
		log:           log,
	}

	s.webhooks = map[domain.PaymentProvider]WebhookHandler{
		domain.PaymentProviderSBP:      newSBPWebhookHandler(repo, subscriptions, log),
		domain.PaymentProviderYooKassa: newYooKassaWebhookHandler(repo, subscriptions, log),
	}

	return s
}

// Create создает платеж: валидирует политику региона, сохраняет запись
// в статусе pending и запрашивает платежную страницу у провайдера
func (s *paymentService) Create(ctx context.Context, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	s.log.Debug("Creating payment for user %s: %s %.2f %s via %s",
		req.UserID, req.SubscriptionTier, req.Amount, req.Currency, req.Provider)

	if err := s.policy.Validate(req); err != nil {
		s.log.Warn("Payment validation failed for user %s: %v", req.UserID, err)
		return domain.PaymentResponse{}, err
	}

	client, ok := s.providers.Get(req.Provider)
	if !ok {
		s.log.Warn("Unsupported payment provider requested: %s", req.Provider)
		return domain.PaymentResponse{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, req.Provider)
	}

	payment := domain.Payment{
		ID:               uuid.New(),
		UserID:           req.UserID,
		Amount:           req.Amount,
		Currency:         req.Currency,
		Status:           domain.PaymentStatusPending,
		Provider:         req.Provider,
		SubscriptionTier: req.SubscriptionTier,
		Description:      req.Description,
		CreatedAt:        time.Now(),
	}

	var paymentURL string
	if client.Configured() {
		result, err := client.CreatePayment(ctx, payment)
		if err != nil {
			if s.metrics != nil {
				s.metrics.IncPaymentFailed(string(req.Provider), req.Currency)
			}
			s.log.Error("Provider %s failed to create payment: %v", req.Provider, err)
			return domain.PaymentResponse{}, err
		}
		payment.ProviderPaymentID = result.ProviderPaymentID
		paymentURL = result.PaymentURL
	} else {
		// Без учетных данных провайдера платежный поток остается
		// проходимым через детерминированный mock URL
		s.log.Warn("Provider %s is not configured, using mock payment flow", req.Provider)
		payment.ProviderPaymentID = provider.MockProviderPaymentID(payment)
		paymentURL = provider.MockPaymentURL(s.websiteURL, payment)
	}

	created, err := s.repo.Create(ctx, payment)
	if err != nil {
		s.log.Error("Failed to persist payment: %v", err)
		return domain.PaymentResponse{}, domain.NewInternalError("Failed to create payment", err)
	}

	if s.metrics != nil {
		s.metrics.IncPaymentCreated(string(created.Provider), created.Currency)
		s.metrics.ObservePaymentAmount(created.Amount, created.Currency, string(created.Status))
	}

	if s.publisher != nil {
		if err := s.publisher.PublishPaymentCreated(ctx, created); err != nil {
			s.log.Warn("Failed to publish payment created event: %v", err)
		}
	}

	s.log.Info("Created payment %s for user %s (%s)", created.ID, created.UserID, created.Provider)

	return domain.PaymentResponse{
		PaymentID:  created.ID.String(),
		PaymentURL: paymentURL,
		Status:     created.Status,
		Amount:     created.Amount,
		Currency:   created.Currency,
	}, nil
}

// CheckStatus возвращает текущий статус платежа, опрашивая провайдера,
// когда тот настроен, и локальную запись в обратном случае
func (s *paymentService) CheckStatus(ctx context.Context, paymentID string, providerName domain.PaymentProvider) (domain.PaymentStatusResponse, error) {
	client, ok := s.providers.Get(providerName)
	if !ok {
		s.log.Warn("Unsupported payment provider requested: %s", providerName)
		return domain.PaymentStatusResponse{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, providerName)
	}

	id, err := uuid.Parse(paymentID)
	if err != nil {
		return domain.PaymentStatusResponse{}, fmt.Errorf("%w: invalid payment id", domain.ErrInvalidInput)
	}

	payment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.PaymentStatusResponse{}, domain.ErrNotFound
		}
		return domain.PaymentStatusResponse{}, domain.NewInternalError("Failed to get payment", err)
	}

	status := payment.Status
	if client.Configured() && !payment.Status.IsTerminal() {
		providerStatus, err := client.CheckStatus(ctx, payment.ProviderPaymentID)
		if err != nil {
			s.log.Error("Provider %s status check failed: %v", providerName, err)
			return domain.PaymentStatusResponse{}, err
		}
		status = providerStatus
	}

	return domain.PaymentStatusResponse{
		PaymentID: payment.ID.String(),
		Status:    status,
		Amount:    payment.Amount,
		Currency:  payment.Currency,
	}, nil
}

// ProcessWebhook направляет вебхук обработчику провайдера.
// Любая ошибка обработчика учитывается в метрике и возвращается как 500:
// провайдеры повторяют доставку при 5xx.
func (s *paymentService) ProcessWebhook(ctx context.Context, providerName domain.PaymentProvider, payload []byte) (domain.WebhookOutcome, error) {
	handler, ok := s.webhooks[providerName]
	if !ok {
		s.log.Warn("Webhook received for unsupported provider: %s", providerName)
		return domain.WebhookOutcome{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedProvider, providerName)
	}

	outcome, err := handler.HandleWebhook(ctx, payload)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncWebhookFailure(string(providerName))
		}
		s.log.Error("Webhook processing failed for provider %s: %v", providerName, err)
		return domain.WebhookOutcome{}, domain.NewInternalError("Webhook processing failed", err)
	}

	switch outcome.Result {
	case domain.WebhookApplied:
		if payment, getErr := s.repo.GetByID(ctx, outcome.PaymentID); getErr == nil {
			if s.metrics != nil {
				s.metrics.IncPaymentCompleted(string(providerName), payment.Currency)
				s.metrics.ObservePaymentAmount(payment.Amount, payment.Currency, string(payment.Status))
			}
			if s.publisher != nil {
				if pubErr := s.publisher.PublishPaymentCompleted(ctx, payment); pubErr != nil {
					s.log.Warn("Failed to publish payment completed event: %v", pubErr)
				}
			}
		}
	case domain.WebhookIgnored:
		if s.metrics != nil {
			s.metrics.IncWebhookIgnored(string(providerName), string(outcome.Reason))
			if outcome.Reason == domain.WebhookIgnoreAmountMismatch {
				s.metrics.IncWebhookAmountMismatch(string(providerName))
			}
		}
		if outcome.Reason == domain.WebhookIgnoreAmountMismatch {
			s.log.Warn("Webhook amount mismatch ignored for provider %s", providerName)
		} else {
			s.log.Debug("Webhook ignored for provider %s: %s", providerName, outcome.Reason)
		}
	}

	return outcome, nil
}
