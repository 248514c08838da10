package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/config"
	"github.com/pat1one/faceit-ai-bot/internal/policy"
	"github.com/pat1one/faceit-ai-bot/internal/provider"
	"github.com/pat1one/faceit-ai-bot/internal/ratelimit"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerFixture struct {
	router      *gin.Engine
	paymentRepo *repository.InMemoryPaymentRepository
}

func newRouterFixture(t *testing.T, mutate func(*config.Config), limiterCfg ratelimit.Config) *routerFixture {
	t.Helper()
	log := logger.New(logger.DEBUG)

	cfg := &config.Config{}
	cfg.App.WebsiteURL = "http://localhost:3000"
	cfg.SBP.WebhookSecret = "sbp-webhook-secret"
	cfg.YooKassa.ShopID = "shop-1"
	cfg.YooKassa.SecretKey = "sk"
	cfg.Auth.JWTSecret = "test-jwt-secret"
	if mutate != nil {
		mutate(cfg)
	}

	paymentRepo := repository.NewInMemoryPaymentRepository(log)
	subsRepo := repository.NewInMemorySubscriptionRepository(log)
	subsSvc := service.NewSubscriptionService(subsRepo, log)

	providers := provider.NewRegistry(
		provider.NewSBPClient(provider.SBPConfig{WebsiteURL: cfg.App.WebsiteURL}, log),
		provider.NewYooKassaClient(provider.YooKassaConfig{WebsiteURL: cfg.App.WebsiteURL}, log),
	)

	regionPolicy := policy.NewRegionPolicy()
	paymentSvc := service.NewPaymentService(
		paymentRepo, subsSvc, regionPolicy, providers, nil, nil, cfg.App.WebsiteURL, log)

	limiter := ratelimit.NewLimiter(limiterCfg, ratelimit.NewMemoryCounterStore(), log)

	router := SetupRouter(RouterDeps{
		Config:          cfg,
		Registry:        prometheus.NewRegistry(),
		Metrics:         nil,
		PaymentService:  paymentSvc,
		SubscriptionSvc: subsSvc,
		RegionPolicy:    regionPolicy,
		Limiter:         limiter,
		Log:             log,
	})

	return &routerFixture{router: router, paymentRepo: paymentRepo}
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	w := doJSON(f.router, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "OK")
	assert.Contains(t, w.Body.String(), "faceit-ai-bot-payments")
}

func TestGetPlansEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	w := doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/plans", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var plans map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plans))
	assert.Len(t, plans, 4)
	assert.Contains(t, plans, "free")
	assert.Contains(t, plans, "elite")
}

func TestCreatePaymentEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	body := map[string]any{
		"subscription_tier": "basic",
		"amount":            100,
		"currency":          "RUB",
		"payment_method":    "sbp",
		"provider":          "sbp",
		"user_id":           "user-1",
	}

	w := doJSON(f.router, http.MethodPost, "/api/v1/payments", body, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["payment_url"], "payment/success")
	assert.Equal(t, "pending", resp["status"])
}

func TestCreatePaymentUnsupportedRegion(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	body := map[string]any{
		"subscription_tier": "basic",
		"amount":            100,
		"currency":          "JPY",
		"payment_method":    "sbp",
		"provider":          "sbp",
		"user_id":           "user-1",
	}

	w := doJSON(f.router, http.MethodPost, "/api/v1/payments", body, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported_region")
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	// Отрицательная сумма отклоняется binding-валидацией
	body := map[string]any{
		"subscription_tier": "basic",
		"amount":            -5,
		"currency":          "RUB",
		"payment_method":    "sbp",
		"provider":          "sbp",
		"user_id":           "user-1",
	}

	w := doJSON(f.router, http.MethodPost, "/api/v1/payments", body, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentMethodsEndpoint(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	w := doJSON(f.router, http.MethodGet, "/api/v1/payment-methods?region=RU", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sbp")

	w = doJSON(f.router, http.MethodGet, "/api/v1/payment-methods?region=MARS", nil, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unsupported region")
}

func TestRateLimitRejectsOverThreshold(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		w := doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/plans", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/plans", nil, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "2 requests per minute")
}

func TestWebhookRequiresSignature(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	body := map[string]any{"payment_id": "x", "status": "paid"}

	w := doJSON(f.router, http.MethodPost, "/webhooks/sbp", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(f.router, http.MethodPost, "/webhooks/sbp", body, map[string]string{
		"X-Webhook-Signature": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookAcceptsValidSignature(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	body := map[string]any{
		"payment_id": "never-seen",
		"amount":     map[string]string{"value": "100.00", "currency": "RUB"},
		"status":     "paid",
	}

	w := doJSON(f.router, http.MethodPost, "/webhooks/sbp", body, map[string]string{
		"X-Webhook-Signature": "sbp-webhook-secret",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "unknown_payment")
}

func TestWebhookYooKassaBasicAuth(t *testing.T) {
	f := newRouterFixture(t, nil, ratelimit.Config{})

	body := map[string]any{"event": "payment.succeeded", "object": map[string]any{"id": "x", "status": "succeeded"}}

	req := httptest.NewRequest(http.MethodPost, "/webhooks/yookassa", bytes.NewReader(mustJSON(body)))
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("shop-1", "sk")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/webhooks/yookassa", bytes.NewReader(mustJSON(body)))
	req.SetBasicAuth("shop-1", "wrong")
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhookTestModeBypassesAuth(t *testing.T) {
	f := newRouterFixture(t, func(cfg *config.Config) {
		cfg.App.TestMode = true
	}, ratelimit.Config{})

	body := map[string]any{
		"payment_id": "never-seen",
		"amount":     map[string]string{"value": "100.00", "currency": "RUB"},
		"status":     "paid",
	}

	w := doJSON(f.router, http.MethodPost, "/webhooks/sbp", body, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnsupportedProvider(t *testing.T) {
	f := newRouterFixture(t, func(cfg *config.Config) {
		cfg.App.TestMode = true
	}, ratelimit.Config{})

	w := doJSON(f.router, http.MethodPost, "/webhooks/paypal", map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported_provider")
}

func TestFullPaymentFlowThroughHTTP(t *testing.T) {
	f := newRouterFixture(t, func(cfg *config.Config) {
		cfg.App.TestMode = true
	}, ratelimit.Config{})

	createBody := map[string]any{
		"subscription_tier": "pro",
		"amount":            9.99,
		"currency":          "USD",
		"payment_method":    "bank_card",
		"provider":          "paypal",
		"user_id":           "user-1",
	}

	// PayPal разрешен политикой US, но клиент не зарегистрирован
	w := doJSON(f.router, http.MethodPost, "/api/v1/payments", createBody, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	createBody["provider"] = "sbp"
	createBody["payment_method"] = "sbp"
	createBody["currency"] = "RUB"
	createBody["amount"] = 999
	w = doJSON(f.router, http.MethodPost, "/api/v1/payments", createBody, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	stored, err := f.paymentRepo.GetByUserID(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	webhook := map[string]any{
		"payment_id": stored[0].ProviderPaymentID,
		"amount":     map[string]string{"value": "999.00", "currency": "RUB"},
		"status":     "paid",
	}
	w = doJSON(f.router, http.MethodPost, "/webhooks/sbp", webhook, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "applied")

	// Подписка активирована
	w = doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/users/user-1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subscription_tier":"pro"`)

	// Доступ к функциям уровня PRO
	w = doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/users/user-1/features/custom_recommendations", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access":true`)

	w = doJSON(f.router, http.MethodGet, "/api/v1/subscriptions/users/user-1/features/ai_coach", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"access":false`)
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
