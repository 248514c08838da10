package domain

import (
	"time"

	"github.com/google/uuid"
)

// WebhookResult результат обработки вебхука
type WebhookResult string

const (
	// WebhookApplied платеж переведен в конечный статус, подписка обновлена
	WebhookApplied WebhookResult = "applied"

	// WebhookIgnored вебхук принят, но состояние не изменилось
	WebhookIgnored WebhookResult = "ignored"
)

// WebhookIgnoreReason причина, по которой вебхук был проигнорирован
type WebhookIgnoreReason string

const (
	WebhookIgnoreUnknownPayment WebhookIgnoreReason = "unknown_payment"
	WebhookIgnoreTerminalState  WebhookIgnoreReason = "already_terminal"
	WebhookIgnoreNonFinalStatus WebhookIgnoreReason = "non_final_status"
	WebhookIgnoreAmountMismatch WebhookIgnoreReason = "amount_mismatch"
)

// WebhookOutcome описывает исход обработки вебхука платежного провайдера.
// Игнорирование не является ошибкой: провайдеру всегда отвечаем 200,
// чтобы не провоцировать шторм повторных доставок.
type WebhookOutcome struct {
	Result    WebhookResult       `json:"result"`
	Reason    WebhookIgnoreReason `json:"reason,omitempty"`
	PaymentID uuid.UUID           `json:"payment_id,omitempty"`
}

// Applied создает исход успешно примененного вебхука
func Applied(paymentID uuid.UUID) WebhookOutcome {
	return WebhookOutcome{Result: WebhookApplied, PaymentID: paymentID}
}

// Ignored создает исход проигнорированного вебхука
func Ignored(reason WebhookIgnoreReason) WebhookOutcome {
	return WebhookOutcome{Result: WebhookIgnored, Reason: reason}
}

// PaymentEvent представляет событие платежа для Kafka
type PaymentEvent struct {
	PaymentID        string           `json:"payment_id"`
	UserID           string           `json:"user_id"`
	Amount           float64          `json:"amount"`
	Currency         string           `json:"currency"`
	Status           PaymentStatus    `json:"status"`
	Provider         PaymentProvider  `json:"provider"`
	SubscriptionTier SubscriptionTier `json:"subscription_tier,omitempty"`
	Timestamp        time.Time        `json:"timestamp"`
}
