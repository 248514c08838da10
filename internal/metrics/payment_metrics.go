package metrics

import (
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PaymentMetrics интерфейс для метрик платежей
type PaymentMetrics interface {
	IncPaymentCreated(provider, currency string)
	IncPaymentCompleted(provider, currency string)
	IncPaymentFailed(provider, currency string)
	ObservePaymentAmount(amount float64, currency string, status string)
	IncWebhookFailure(provider string)
	IncWebhookIgnored(provider, reason string)
	IncWebhookAmountMismatch(provider string)
	IncRateLimited(scope string)
}

type paymentMetrics struct {
	log                   *logger.Logger
	paymentsCreated       *prometheus.CounterVec
	paymentsStatus        *prometheus.CounterVec
	paymentsAmount        *prometheus.HistogramVec
	webhookFailures       *prometheus.CounterVec
	webhookIgnored        *prometheus.CounterVec
	webhookAmountMismatch *prometheus.CounterVec
	rateLimitedRequests   *prometheus.CounterVec
}

// NewPaymentMetrics создает новые метрики платежей
func NewPaymentMetrics(registry *prometheus.Registry, log *logger.Logger) PaymentMetrics {
	paymentsCreated := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_created_total",
			Help: "The total number of created payments",
		},
		[]string{"provider", "currency"},
	)

	paymentsStatus := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_status_total",
			Help: "The total number of payments by status",
		},
		[]string{"status", "provider", "currency"},
	)

	paymentsAmount := promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payments_amount",
			Help:    "Payment amounts distribution",
			Buckets: prometheus.ExponentialBuckets(10, 10, 5), // 10, 100, 1000, 10000, 100000
		},
		[]string{"currency", "status"},
	)

	webhookFailures := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_failures_total",
			Help: "The total number of webhook processing failures",
		},
		[]string{"provider"},
	)

	webhookIgnored := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_ignored_total",
			Help: "The total number of ignored webhook deliveries by reason",
		},
		[]string{"provider", "reason"},
	)

	webhookAmountMismatch := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_webhook_amount_mismatch_total",
			Help: "The total number of webhooks ignored due to amount or currency mismatch",
		},
		[]string{"provider"},
	)

	rateLimitedRequests := promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "The total number of requests rejected by the rate limiter",
		},
		[]string{"scope"},
	)

	return &paymentMetrics{
		log:                   log,
		paymentsCreated:       paymentsCreated,
		paymentsStatus:        paymentsStatus,
		paymentsAmount:        paymentsAmount,
		webhookFailures:       webhookFailures,
		webhookIgnored:        webhookIgnored,
		webhookAmountMismatch: webhookAmountMismatch,
		rateLimitedRequests:   rateLimitedRequests,
	}
}

// IncPaymentCreated увеличивает счетчик созданных платежей
func (m *paymentMetrics) IncPaymentCreated(provider, currency string) {
	m.paymentsCreated.WithLabelValues(provider, currency).Inc()
}

// IncPaymentCompleted увеличивает счетчик завершенных платежей
func (m *paymentMetrics) IncPaymentCompleted(provider, currency string) {
	m.paymentsStatus.WithLabelValues("completed", provider, currency).Inc()
}

// IncPaymentFailed увеличивает счетчик неудачных платежей
func (m *paymentMetrics) IncPaymentFailed(provider, currency string) {
	m.paymentsStatus.WithLabelValues("failed", provider, currency).Inc()
}

// ObservePaymentAmount записывает сумму платежа
func (m *paymentMetrics) ObservePaymentAmount(amount float64, currency string, status string) {
	m.paymentsAmount.WithLabelValues(currency, status).Observe(amount)
}

// IncWebhookFailure увеличивает счетчик ошибок обработки вебхуков
func (m *paymentMetrics) IncWebhookFailure(provider string) {
	m.webhookFailures.WithLabelValues(provider).Inc()
}

// IncWebhookIgnored увеличивает счетчик проигнорированных вебхуков
func (m *paymentMetrics) IncWebhookIgnored(provider, reason string) {
	m.webhookIgnored.WithLabelValues(provider, reason).Inc()
}

// IncWebhookAmountMismatch увеличивает счетчик расхождений суммы
func (m *paymentMetrics) IncWebhookAmountMismatch(provider string) {
	m.webhookAmountMismatch.WithLabelValues(provider).Inc()
}

// IncRateLimited увеличивает счетчик отклоненных по лимиту запросов
func (m *paymentMetrics) IncRateLimited(scope string) {
	m.rateLimitedRequests.WithLabelValues(scope).Inc()
}
