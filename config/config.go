package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config структура конфигурации приложения
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	YooKassa  YooKassaConfig
	SBP       SBPConfig
	Logging   LoggingConfig
}

// AppConfig общие параметры приложения
type AppConfig struct {
	// TestMode отключает проверку подписи вебхуков; только для разработки
	TestMode   bool
	WebsiteURL string `validate:"required,url"`
}

// ServerConfig конфигурация HTTP сервера
type ServerConfig struct {
	Port            string `validate:"required,numeric"`
	ReadTimeout     int    `validate:"gt=0"`
	WriteTimeout    int    `validate:"gt=0"`
	ShutdownTimeout int    `validate:"gt=0"`
}

// DatabaseConfig конфигурация базы данных
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig конфигурация Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig конфигурация Kafka
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// AuthConfig конфигурация аутентификации
type AuthConfig struct {
	JWTSecret string
}

// RateLimitConfig конфигурация ограничителя частоты запросов
type RateLimitConfig struct {
	RequestsPerMinute int `validate:"gte=0"`
	RequestsPerDay    int `validate:"gte=0"`
	BypassIdentity    string
}

// YooKassaConfig конфигурация провайдера YooKassa
type YooKassaConfig struct {
	APIURL    string
	ShopID    string
	SecretKey string
}

// SBPConfig конфигурация провайдера СБП
type SBPConfig struct {
	APIURL        string
	APIToken      string
	WebhookSecret string
}

// LoggingConfig конфигурация логгера
type LoggingConfig struct {
	Level string
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	if c.Host == "" {
		return ""
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			TestMode:   getEnvAsBool("TEST_MODE", false),
			WebsiteURL: getEnv("WEBSITE_URL", "http://localhost:3000"),
		},
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", ""),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "faceit_payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvAsBool("KAFKA_ENABLED", false),
			Brokers: getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 30),
			RequestsPerDay:    getEnvAsInt("RATE_LIMIT_PER_DAY", 1000),
			BypassIdentity:    getEnv("RATE_LIMIT_BYPASS_IDENTITY", ""),
		},
		YooKassa: YooKassaConfig{
			APIURL:    getEnv("YOOKASSA_API_URL", "https://api.yookassa.ru/v3/payments"),
			ShopID:    getEnv("YOOKASSA_SHOP_ID", ""),
			SecretKey: getEnv("YOOKASSA_SECRET_KEY", ""),
		},
		SBP: SBPConfig{
			APIURL:        getEnv("SBP_API_URL", ""),
			APIToken:      getEnv("SBP_API_TOKEN", ""),
			WebhookSecret: getEnv("SBP_WEBHOOK_SECRET", ""),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if !cfg.App.TestMode && cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required outside test mode")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int или возвращает значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSlice получает список значений, разделенных запятыми
func getEnvAsSlice(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
