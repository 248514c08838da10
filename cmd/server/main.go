package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/pat1one/faceit-ai-bot/config"
	"github.com/pat1one/faceit-ai-bot/internal/api/rest"
	"github.com/pat1one/faceit-ai-bot/internal/db"
	"github.com/pat1one/faceit-ai-bot/internal/kafka"
	"github.com/pat1one/faceit-ai-bot/internal/kafka/producer"
	"github.com/pat1one/faceit-ai-bot/internal/metrics"
	"github.com/pat1one/faceit-ai-bot/internal/policy"
	"github.com/pat1one/faceit-ai-bot/internal/provider"
	"github.com/pat1one/faceit-ai-bot/internal/ratelimit"
	"github.com/pat1one/faceit-ai-bot/internal/repository"
	"github.com/pat1one/faceit-ai-bot/internal/repository/postgres"
	"github.com/pat1one/faceit-ai-bot/internal/service"
	"github.com/pat1one/faceit-ai-bot/internal/worker"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

var log *logger.Logger

func init() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		// Пропускаем ошибку, если .env файл не найден
	}

	// Инициализация логгера
	logLevel := logger.INFO
	if os.Getenv("DEBUG") == "true" {
		logLevel = logger.DEBUG
	}
	log = logger.New(logLevel)
}

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализация Prometheus
	promRegistry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(promRegistry, log)
	systemMetrics := metrics.NewSystemMetrics(promRegistry, log)

	systemMetrics.StartRecording(15 * time.Second)
	defer systemMetrics.Stop()

	// Хранилища: Postgres при наличии DSN, иначе in-memory
	var (
		paymentRepo      repository.PaymentRepository
		subscriptionRepo repository.SubscriptionRepository
	)

	if dsn := cfg.Database.GetDSN(); dsn != "" {
		dbPool, err := postgres.NewConnection(ctx, dsn, log)
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer dbPool.Close()

		subscriptionStore, err := db.NewSubscriptionStore(dsn, log)
		if err != nil {
			log.Fatal("Failed to open subscription store: %v", err)
		}
		defer subscriptionStore.Close()

		paymentRepo = postgres.NewPostgresPaymentRepository(dbPool, log)
		subscriptionRepo = subscriptionStore
	} else {
		log.Warn("DB_HOST is not set, using in-memory storage")
		paymentRepo = repository.NewInMemoryPaymentRepository(log)
		subscriptionRepo = repository.NewInMemorySubscriptionRepository(log)
	}

	// Счетчики лимитов: Redis при наличии адреса, иначе память процесса
	var counterStore ratelimit.CounterStore
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		counterStore = ratelimit.NewRedisCounterStore(redisClient)
	} else {
		log.Warn("REDIS_ADDR is not set, rate limit counters are process-local")
		counterStore = ratelimit.NewMemoryCounterStore()
	}

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		RequestsPerDay:    cfg.RateLimit.RequestsPerDay,
		BypassIdentity:    cfg.RateLimit.BypassIdentity,
	}, counterStore, log)

	// Кеш подписок поверх основного хранилища при наличии Redis
	if redisClient != nil {
		if cache, err := repository.NewRedisSubscriptionCache(redisClient, log); err != nil {
			log.Warn("Subscription cache is disabled: %v", err)
		} else {
			subscriptionRepo = repository.NewCachedSubscriptionRepository(subscriptionRepo, cache, log)
		}
	}

	// Платежные провайдеры
	providers := provider.NewRegistry(
		provider.NewSBPClient(provider.SBPConfig{
			APIURL:     cfg.SBP.APIURL,
			Token:      cfg.SBP.APIToken,
			WebsiteURL: cfg.App.WebsiteURL,
		}, log),
		provider.NewYooKassaClient(provider.YooKassaConfig{
			APIURL:     cfg.YooKassa.APIURL,
			ShopID:     cfg.YooKassa.ShopID,
			SecretKey:  cfg.YooKassa.SecretKey,
			WebsiteURL: cfg.App.WebsiteURL,
		}, log),
	)

	// Kafka: опциональная шина событий платежей
	var paymentProducer producer.PaymentProducer
	var eventPublisher service.EventPublisher
	if cfg.Kafka.Enabled {
		kafkaConfig := kafka.NewConfig(cfg.Kafka.Brokers)
		saramaConfig := kafka.NewSaramaConfig(kafkaConfig, log)

		topics := []string{producer.TopicPaymentCreated, producer.TopicPaymentCompleted}
		if err := kafka.EnsureTopics(kafkaConfig.Brokers, topics, saramaConfig, log); err != nil {
			log.Warn("Failed to ensure Kafka topics: %v", err)
		}

		syncProducer, err := sarama.NewSyncProducer(kafkaConfig.Brokers, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka producer: %v", err)
		}

		paymentProducer = producer.NewKafkaPaymentProducer(syncProducer, log)
		defer paymentProducer.Close()
		eventPublisher = paymentProducer

		// Фоновый воркер уведомлений о завершенных платежах
		consumerGroup, err := sarama.NewConsumerGroup(kafkaConfig.Brokers, kafkaConfig.Consumer.Group, saramaConfig)
		if err != nil {
			log.Fatal("Failed to create Kafka consumer group: %v", err)
		}

		notificationWorker := worker.NewWorker(worker.Config{
			Topics:      []string{producer.TopicPaymentCompleted},
			MaxAttempts: 10,
			RetryDelay:  time.Minute,
		}, consumerGroup, worker.NewNotificationHandler(log), log)
		defer notificationWorker.Close()

		go func() {
			if err := notificationWorker.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("Notification worker stopped: %v", err)
			}
		}()
	} else {
		log.Warn("Kafka is disabled, payment events are not published")
	}

	// Сервисы
	subscriptionSvc := service.NewSubscriptionService(subscriptionRepo, log)
	regionPolicy := policy.NewRegionPolicy()
	paymentSvc := service.NewPaymentService(
		paymentRepo,
		subscriptionSvc,
		regionPolicy,
		providers,
		eventPublisher,
		paymentMetrics,
		cfg.App.WebsiteURL,
		log,
	)

	// Установка режима Gin
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Настройка маршрутизатора
	router := rest.SetupRouter(rest.RouterDeps{
		Config:          cfg,
		Registry:        promRegistry,
		Metrics:         paymentMetrics,
		PaymentService:  paymentSvc,
		SubscriptionSvc: subscriptionSvc,
		RegionPolicy:    regionPolicy,
		Limiter:         limiter,
		Log:             log,
	})

	// Создание и запуск HTTP сервера
	server := rest.NewServer(router, cfg, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
