package kafka

import (
	"time"

	"github.com/IBM/sarama"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// Config конфигурация для Kafka
type Config struct {
	Brokers  []string
	Producer ProducerConfig
	Consumer ConsumerConfig
}

// ProducerConfig конфигурация для продюсера
type ProducerConfig struct {
	MaxMessageBytes  int
	Compression      sarama.CompressionCodec
	RequiredAcks     sarama.RequiredAcks
	FlushMaxMessages int
}

// ConsumerConfig конфигурация для консьюмера
type ConsumerConfig struct {
	Group              string
	InitialOffset      int64
	OffsetReset        string
	SessionTimeout     int
	HeartbeatInterval  int
	RebalanceStrategy  string
	MaxProcessingTime  int
	ReturnErrors       bool
	IsolationLevel     sarama.IsolationLevel
	MaxWaitTime        int
	MinBytes           int
	MaxBytes           int
	EnableAutoCommit   bool
	AutoCommitInterval int
}

// NewConfig создает новую конфигурацию Kafka
func NewConfig(brokers []string) *Config {
	return &Config{
		Brokers: brokers,
		Producer: ProducerConfig{
			MaxMessageBytes:  1000000,
			Compression:      sarama.CompressionSnappy,
			RequiredAcks:     sarama.WaitForAll,
			FlushMaxMessages: 100,
		},
		Consumer: ConsumerConfig{
			Group:              "faceit-payments",
			InitialOffset:      sarama.OffsetNewest,
			OffsetReset:        "latest",
			SessionTimeout:     30000,
			HeartbeatInterval:  3000,
			RebalanceStrategy:  "range",
			MaxProcessingTime:  100,
			ReturnErrors:       true,
			IsolationLevel:     sarama.ReadCommitted,
			MaxWaitTime:        250,
			MinBytes:           1,
			MaxBytes:           10e6,
			EnableAutoCommit:   true,
			AutoCommitInterval: 1000,
		},
	}
}

// NewSaramaConfig создает новую конфигурацию Sarama
func NewSaramaConfig(cfg *Config, log *logger.Logger) *sarama.Config {
	saramaConfig := sarama.NewConfig()

	// Версия Kafka
	saramaConfig.Version = sarama.V3_3_0_0

	// Настройки продюсера
	saramaConfig.Producer.MaxMessageBytes = cfg.Producer.MaxMessageBytes
	saramaConfig.Producer.Compression = cfg.Producer.Compression
	saramaConfig.Producer.RequiredAcks = cfg.Producer.RequiredAcks
	saramaConfig.Producer.Flush.MaxMessages = cfg.Producer.FlushMaxMessages
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true

	// Настройки консьюмера
	saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.Consumer.SessionTimeout) * time.Millisecond
	saramaConfig.Consumer.Group.Heartbeat.Interval = time.Duration(cfg.Consumer.HeartbeatInterval) * time.Millisecond
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	saramaConfig.Consumer.Offsets.Initial = cfg.Consumer.InitialOffset
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = cfg.Consumer.EnableAutoCommit
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Duration(cfg.Consumer.AutoCommitInterval) * time.Millisecond
	saramaConfig.Consumer.Return.Errors = cfg.Consumer.ReturnErrors

	return saramaConfig
}
