package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/pat1one/faceit-ai-bot/config"
	"github.com/pat1one/faceit-ai-bot/internal/api/rest/handlers"
	"github.com/pat1one/faceit-ai-bot/internal/api/rest/middleware"
	"github.com/pat1one/faceit-ai-bot/internal/metrics"
	"github.com/pat1one/faceit-ai-bot/internal/policy"
	"github.com/pat1one/faceit-ai-bot/internal/ratelimit"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps зависимости HTTP-маршрутизатора
type RouterDeps struct {
	Config          *config.Config
	Registry        *prometheus.Registry
	Metrics         metrics.PaymentMetrics
	PaymentService  service.PaymentService
	SubscriptionSvc service.SubscriptionService
	RegionPolicy    *policy.RegionPolicy
	Limiter         *ratelimit.Limiter
	Log             *logger.Logger
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware
func SetupRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	log := deps.Log
	cfg := deps.Config

	// Подключение middleware
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	// Endpoint для проверки работоспособности сервиса
	r.GET("/health", handlers.HealthCheck)

	// Prometheus метрики
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Инициализация обработчиков
	paymentHandler := handlers.NewPaymentHandler(deps.PaymentService, log)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.SubscriptionSvc, log)
	policyHandler := handlers.NewPolicyHandler(deps.RegionPolicy, log)
	webhookHandler := handlers.NewWebhookHandler(deps.PaymentService, log)

	jwtMiddleware := middleware.NewJWTMiddleware(log, &middleware.DefaultTokenValidator{
		Secret: []byte(cfg.Auth.JWTSecret),
	})

	// API для платежей и подписок
	v1 := r.Group("/api/v1")
	v1.Use(jwtMiddleware.OptionalAuth())
	{
		v1.GET("/payment-methods", policyHandler.GetPaymentMethods)

		payments := v1.Group("/payments")
		payments.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.Metrics, "payments", log))
		{
			payments.POST("", paymentHandler.CreatePayment)
			payments.GET("/:id/status", paymentHandler.GetPaymentStatus)
		}

		subscriptions := v1.Group("/subscriptions")
		subscriptions.Use(middleware.RateLimitMiddleware(deps.Limiter, deps.Metrics, "subscriptions", log))
		{
			subscriptions.GET("/plans", subscriptionHandler.GetPlans)
			subscriptions.GET("/users/:user_id", subscriptionHandler.GetUserSubscription)
			subscriptions.POST("/users/:user_id", subscriptionHandler.CreateSubscription)
			subscriptions.GET("/users/:user_id/features/:feature", subscriptionHandler.CheckFeatureAccess)
		}
	}

	// Вебхуки на корневом уровне роутера
	webhooks := r.Group("/webhooks")
	webhooks.Use(middleware.WebhookAuthMiddleware(middleware.WebhookAuthConfig{
		TestMode:          cfg.App.TestMode,
		SBPSecret:         cfg.SBP.WebhookSecret,
		YooKassaShopID:    cfg.YooKassa.ShopID,
		YooKassaSecretKey: cfg.YooKassa.SecretKey,
	}, log))
	{
		webhooks.POST("/:provider", webhookHandler.HandleWebhook)
	}

	return r
}
