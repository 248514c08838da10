package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

const (
	TopicPaymentCreated   = "payment.created"
	TopicPaymentCompleted = "payment.completed"
)

// PaymentProducer интерфейс для отправки событий платежей
type PaymentProducer interface {
	PublishPaymentCreated(ctx context.Context, payment domain.Payment) error
	PublishPaymentCompleted(ctx context.Context, payment domain.Payment) error
	Close() error
}

type kafkaPaymentProducer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
}

// NewKafkaPaymentProducer создает новый продюсер событий платежей
func NewKafkaPaymentProducer(producer sarama.SyncProducer, log *logger.Logger) PaymentProducer {
	return &kafkaPaymentProducer{
		producer: producer,
		log:      log,
	}
}

// PublishPaymentCreated публикует событие о создании платежа
func (p *kafkaPaymentProducer) PublishPaymentCreated(ctx context.Context, payment domain.Payment) error {
	return p.publishEvent(TopicPaymentCreated, payment)
}

// PublishPaymentCompleted публикует событие о завершении платежа
func (p *kafkaPaymentProducer) PublishPaymentCompleted(ctx context.Context, payment domain.Payment) error {
	return p.publishEvent(TopicPaymentCompleted, payment)
}

// publishEvent публикует событие платежа в Kafka
func (p *kafkaPaymentProducer) publishEvent(topic string, payment domain.Payment) error {
	event := domain.PaymentEvent{
		PaymentID:        payment.ID.String(),
		UserID:           payment.UserID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Status:           payment.Status,
		Provider:         payment.Provider,
		SubscriptionTier: payment.SubscriptionTier,
		Timestamp:        time.Now(),
	}

	messageValue, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal payment event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(payment.ID.String()),
		Value: sarama.ByteEncoder(messageValue),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("event_type"),
				Value: []byte(topic),
			},
		},
		Timestamp: time.Now(),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to publish payment event: %w", err)
	}

	p.log.Info("Published payment event to topic %s: partition=%d offset=%d",
		topic, partition, offset)

	return nil
}

// Close закрывает продюсер
func (p *kafkaPaymentProducer) Close() error {
	return p.producer.Close()
}
