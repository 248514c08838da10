package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// amountTolerance допустимое расхождение суммы при сверке вебхука
const amountTolerance = 0.01

// WebhookHandler обработчик вебхуков одного платежного провайдера
type WebhookHandler interface {
	Provider() domain.PaymentProvider
	HandleWebhook(ctx context.Context, payload []byte) (domain.WebhookOutcome, error)
}

// webhookReconciler общая логика сверки вебхука с записью платежа.
// Все "молчаливые" исходы (нет записи, конечный статус, промежуточный
// статус, расхождение суммы) возвращаются как Ignored, а не ошибки.
type webhookReconciler struct {
	repo          repository.PaymentRepository
	subscriptions SubscriptionService
	log           *logger.Logger
}

// webhookFacts извлеченные из пейлоада факты для сверки
type webhookFacts struct {
	ProviderPaymentID string
	FinalSuccess      bool
	AmountValue       string
	Currency          string
	TierOverride      domain.SubscriptionTier
}

// reconcile применяет протокол обработки вебхука к записи платежа
func (r *webhookReconciler) reconcile(ctx context.Context, providerName domain.PaymentProvider, facts webhookFacts) (domain.WebhookOutcome, error) {
	payment, err := r.repo.GetByProviderPaymentID(ctx, providerName, facts.ProviderPaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Повторный или чужой вебхук: не ошибка, состояние не трогаем
			r.log.Info("Webhook for unknown payment %s/%s ignored", providerName, facts.ProviderPaymentID)
			return domain.Ignored(domain.WebhookIgnoreUnknownPayment), nil
		}
		return domain.WebhookOutcome{}, fmt.Errorf("failed to look up payment: %w", err)
	}

	if payment.Status.IsTerminal() {
		return domain.Ignored(domain.WebhookIgnoreTerminalState), nil
	}

	if !facts.FinalSuccess {
		return domain.Ignored(domain.WebhookIgnoreNonFinalStatus), nil
	}

	if !amountsMatch(payment, facts.AmountValue, facts.Currency) {
		r.log.Warn("Webhook amount mismatch for payment %s: stored %.2f %s, webhook %s %s",
			payment.ID, payment.Amount, payment.Currency, facts.AmountValue, facts.Currency)
		return domain.Ignored(domain.WebhookIgnoreAmountMismatch), nil
	}

	tier := payment.SubscriptionTier
	if facts.TierOverride != "" && facts.TierOverride.Valid() {
		tier = facts.TierOverride
	}

	// Подписка оформляется до перевода платежа в конечный статус: если
	// upsert не удался, платеж остается pending и повторный вебхук от
	// провайдера выполнит выдачу заново.
	if tier != "" {
		if _, err := r.subscriptions.CreateSubscription(ctx, payment.UserID, tier); err != nil {
			return domain.WebhookOutcome{}, fmt.Errorf("failed to provision subscription: %w", err)
		}
	}

	if err := r.repo.MarkCompleted(ctx, payment.ID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Конкурентный вебхук успел первым, подписка уже выдана
			return domain.Ignored(domain.WebhookIgnoreTerminalState), nil
		}
		return domain.WebhookOutcome{}, fmt.Errorf("failed to complete payment: %w", err)
	}

	r.log.Info("Payment %s completed via %s webhook, subscription tier %s", payment.ID, providerName, tier)
	return domain.Applied(payment.ID), nil
}

// amountsMatch сравнивает сумму и валюту вебхука с записью платежа
func amountsMatch(payment domain.Payment, amountValue, currency string) bool {
	amount, err := strconv.ParseFloat(amountValue, 64)
	if err != nil {
		return false
	}

	if math.Abs(amount-payment.Amount) > amountTolerance {
		return false
	}

	return strings.EqualFold(currency, payment.Currency)
}

// sbpWebhookHandler обработчик вебхуков СБП
type sbpWebhookHandler struct {
	webhookReconciler
}

func newSBPWebhookHandler(repo repository.PaymentRepository, subscriptions SubscriptionService, log *logger.Logger) *sbpWebhookHandler {
	return &sbpWebhookHandler{webhookReconciler{repo: repo, subscriptions: subscriptions, log: log}}
}

// Provider возвращает идентификатор провайдера
func (h *sbpWebhookHandler) Provider() domain.PaymentProvider {
	return domain.PaymentProviderSBP
}

// sbpWebhookPayload пейлоад вебхука СБП
type sbpWebhookPayload struct {
	PaymentID string `json:"payment_id"`
	Amount    struct {
		Value    string `json:"value"`
		Currency string `json:"currency"`
	} `json:"amount"`
	Status string `json:"status"`
}

// HandleWebhook сверяет вебхук СБП с записью платежа
func (h *sbpWebhookHandler) HandleWebhook(ctx context.Context, payload []byte) (domain.WebhookOutcome, error) {
	var parsed sbpWebhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return domain.WebhookOutcome{}, fmt.Errorf("invalid sbp webhook payload: %w", err)
	}

	return h.reconcile(ctx, domain.PaymentProviderSBP, webhookFacts{
		ProviderPaymentID: parsed.PaymentID,
		FinalSuccess:      parsed.Status == "paid",
		AmountValue:       parsed.Amount.Value,
		Currency:          parsed.Amount.Currency,
	})
}

// yookassaWebhookHandler обработчик вебхуков YooKassa
type yookassaWebhookHandler struct {
	webhookReconciler
}

func newYooKassaWebhookHandler(repo repository.PaymentRepository, subscriptions SubscriptionService, log *logger.Logger) *yookassaWebhookHandler {
	return &yookassaWebhookHandler{webhookReconciler{repo: repo, subscriptions: subscriptions, log: log}}
}

// Provider возвращает идентификатор провайдера
func (h *yookassaWebhookHandler) Provider() domain.PaymentProvider {
	return domain.PaymentProviderYooKassa
}

// yookassaWebhookPayload пейлоад уведомления YooKassa
type yookassaWebhookPayload struct {
	Event  string `json:"event"`
	Object struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Amount struct {
			Value    string `json:"value"`
			Currency string `json:"currency"`
		} `json:"amount"`
		Metadata struct {
			UserID           string `json:"user_id"`
			SubscriptionTier string `json:"subscription_tier"`
		} `json:"metadata"`
	} `json:"object"`
}

// HandleWebhook сверяет уведомление YooKassa с записью платежа.
// Уровень подписки из метаданных уведомления имеет приоритет над
// уровнем, сохраненным при создании платежа.
func (h *yookassaWebhookHandler) HandleWebhook(ctx context.Context, payload []byte) (domain.WebhookOutcome, error) {
	var parsed yookassaWebhookPayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return domain.WebhookOutcome{}, fmt.Errorf("invalid yookassa webhook payload: %w", err)
	}

	final := parsed.Event == "payment.succeeded" && parsed.Object.Status == "succeeded"

	return h.reconcile(ctx, domain.PaymentProviderYooKassa, webhookFacts{
		ProviderPaymentID: parsed.Object.ID,
		FinalSuccess:      final,
		AmountValue:       parsed.Object.Amount.Value,
		Currency:          parsed.Object.Amount.Currency,
		TierOverride:      domain.SubscriptionTier(parsed.Object.Metadata.SubscriptionTier),
	})
}
