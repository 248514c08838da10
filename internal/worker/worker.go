package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
)

// TaskHandler обработчик фонового события платежа
type TaskHandler interface {
	Handle(ctx context.Context, event domain.PaymentEvent) error
}

// Config конфигурация фонового воркера
type Config struct {
	Topics []string

	// MaxAttempts максимальное число попыток обработки одного события
	MaxAttempts int

	// RetryDelay фиксированная задержка между попытками
	RetryDelay time.Duration
}

// Worker потребляет события платежей из Kafka и передает их обработчику.
// Доставка at-least-once: offset фиксируется только после успешной
// обработки, поэтому обработчики обязаны быть идемпотентными.
type Worker struct {
	cfg     Config
	group   sarama.ConsumerGroup
	handler TaskHandler
	log     *logger.Logger
}

// NewWorker создает новый фоновый воркер
func NewWorker(cfg Config, group sarama.ConsumerGroup, handler TaskHandler, log *logger.Logger) *Worker {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Minute
	}

	return &Worker{
		cfg:     cfg,
		group:   group,
		handler: handler,
		log:     log,
	}
}

// Run запускает цикл потребления; блокирует до отмены контекста
func (w *Worker) Run(ctx context.Context) error {
	consumer := &groupConsumer{worker: w, ctx: ctx}

	for {
		if err := w.group.Consume(ctx, w.cfg.Topics, consumer); err != nil {
			w.log.Error("Kafka consume error: %v", err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Close закрывает группу потребителей
func (w *Worker) Close() error {
	return w.group.Close()
}

// groupConsumer реализует sarama.ConsumerGroupHandler
type groupConsumer struct {
	worker *Worker
	ctx    context.Context
}

func (c *groupConsumer) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (c *groupConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim обрабатывает сообщения партиции с ретраями
func (c *groupConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for message := range claim.Messages() {
		if err := c.worker.processMessage(c.ctx, message); err != nil {
			// Все попытки исчерпаны: фиксируем offset, чтобы не
			// блокировать партицию, и оставляем след в логе
			c.worker.log.Error("Dropping payment event after %d attempts: %v",
				c.worker.cfg.MaxAttempts, err)
		}
		session.MarkMessage(message, "")
	}
	return nil
}

// processMessage разбирает событие и выполняет обработчик с ретраями
func (w *Worker) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event domain.PaymentEvent
	if err := json.Unmarshal(message.Value, &event); err != nil {
		// Неразбираемое сообщение ретраить бессмысленно
		w.log.Error("Failed to unmarshal payment event from topic %s: %v", message.Topic, err)
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		lastErr = w.handler.Handle(ctx, event)
		if lastErr == nil {
			return nil
		}

		w.log.Warn("Payment event handling failed (attempt %d/%d): %v",
			attempt, w.cfg.MaxAttempts, lastErr)

		if attempt == w.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.cfg.RetryDelay):
		}
	}

	return lastErr
}

// NotificationHandler уведомляет пользователя о завершенном платеже.
// Сама доставка (email, Discord) выполняется внешними сервисами; здесь
// фиксируется факт и параметры уведомления.
type NotificationHandler struct {
	log *logger.Logger
}

// NewNotificationHandler создает обработчик уведомлений
func NewNotificationHandler(log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{log: log}
}

// Handle обрабатывает событие платежа
func (h *NotificationHandler) Handle(ctx context.Context, event domain.PaymentEvent) error {
	if event.Status != domain.PaymentStatusCompleted {
		return nil
	}

	h.log.Info("Notifying user %s: payment %s completed, subscription %s",
		event.UserID, event.PaymentID, event.SubscriptionTier)
	return nil
}
