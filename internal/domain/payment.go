package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus статус платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// IsTerminal проверяет, является ли статус конечным
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusCompleted, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// PaymentProvider платежный провайдер
type PaymentProvider string

const (
	PaymentProviderSBP      PaymentProvider = "sbp"
	PaymentProviderYooKassa PaymentProvider = "yookassa"
	PaymentProviderStripe   PaymentProvider = "stripe"
	PaymentProviderPayPal   PaymentProvider = "paypal"
	PaymentProviderQIWI     PaymentProvider = "qiwi"
)

// PaymentMethod метод оплаты
type PaymentMethod string

const (
	PaymentMethodSBP      PaymentMethod = "sbp"
	PaymentMethodBankCard PaymentMethod = "bank_card"
	PaymentMethodYooMoney PaymentMethod = "yoomoney"
	PaymentMethodPayPal   PaymentMethod = "paypal"
)

// Payment представляет собой модель платежа
type Payment struct {
	ID                uuid.UUID        `json:"id"`
	UserID            string           `json:"user_id"`
	Amount            float64          `json:"amount"`
	Currency          string           `json:"currency"`
	Status            PaymentStatus    `json:"status"`
	Provider          PaymentProvider  `json:"provider"`
	ProviderPaymentID string           `json:"provider_payment_id,omitempty"`
	SubscriptionTier  SubscriptionTier `json:"subscription_tier,omitempty"`
	Description       string           `json:"description,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	CompletedAt       *time.Time       `json:"completed_at,omitempty"`
}

// PaymentRequest представляет запрос на создание платежа
type PaymentRequest struct {
	SubscriptionTier SubscriptionTier `json:"subscription_tier" binding:"required"`
	Amount           float64          `json:"amount" binding:"required,gt=0"`
	Currency         string           `json:"currency" binding:"required,len=3"`
	PaymentMethod    PaymentMethod    `json:"payment_method" binding:"required"`
	Provider         PaymentProvider  `json:"provider" binding:"required"`
	Description      string           `json:"description"`
	UserID           string           `json:"user_id" binding:"required"`
	Region           string           `json:"region,omitempty"`
}

// PaymentResponse представляет ответ на создание платежа
type PaymentResponse struct {
	PaymentID  string        `json:"payment_id"`
	PaymentURL string        `json:"payment_url"`
	Status     PaymentStatus `json:"status"`
	Amount     float64       `json:"amount"`
	Currency   string        `json:"currency"`
}

// PaymentStatusResponse представляет ответ на запрос статуса платежа
type PaymentStatusResponse struct {
	PaymentID string        `json:"payment_id"`
	Status    PaymentStatus `json:"status"`
	Amount    float64       `json:"amount"`
	Currency  string        `json:"currency"`
}
