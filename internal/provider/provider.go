package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pat1one/faceit-ai-bot/internal/domain"
)

// requestTimeout ограничивает время исходящих запросов к провайдерам
const requestTimeout = 10 * time.Second

// CreateResult результат создания платежа у провайдера
type CreateResult struct {
	ProviderPaymentID string
	PaymentURL        string
	Status            domain.PaymentStatus
}

// Client интерфейс клиента платежного провайдера
type Client interface {
	// Provider возвращает идентификатор провайдера
	Provider() domain.PaymentProvider

	// Configured сообщает, заданы ли учетные данные провайдера
	Configured() bool

	// CreatePayment создает платеж на стороне провайдера
	CreatePayment(ctx context.Context, payment domain.Payment) (CreateResult, error)

	// CheckStatus запрашивает текущий статус платежа у провайдера
	CheckStatus(ctx context.Context, providerPaymentID string) (domain.PaymentStatus, error)
}

// Registry реестр клиентов провайдеров по идентификатору
type Registry struct {
	clients map[domain.PaymentProvider]Client
}

// NewRegistry создает реестр из переданных клиентов
func NewRegistry(clients ...Client) *Registry {
	registry := &Registry{
		clients: make(map[domain.PaymentProvider]Client, len(clients)),
	}
	for _, client := range clients {
		registry.clients[client.Provider()] = client
	}
	return registry
}

// Get возвращает клиента провайдера, если он зарегистрирован
func (r *Registry) Get(provider domain.PaymentProvider) (Client, bool) {
	client, ok := r.clients[provider]
	return client, ok
}

// MockPaymentURL возвращает детерминированный URL платежа для окружений
// без настроенного провайдера
func MockPaymentURL(websiteURL string, payment domain.Payment) string {
	return fmt.Sprintf("%s/payment/success?payment_id=%s&tier=%s",
		websiteURL, payment.ID, payment.SubscriptionTier)
}

// MockProviderPaymentID возвращает детерминированный внешний идентификатор
// платежа для mock-режима
func MockProviderPaymentID(payment domain.Payment) string {
	return fmt.Sprintf("mock_%s_%s", payment.Provider, payment.ID)
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}
