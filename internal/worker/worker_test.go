package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/pat1one/faceit-ai-bot/internal/domain"
	"github.com/pat1one/faceit-ai-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyHandler успешно обрабатывает событие после нескольких отказов
type flakyHandler struct {
	failures int
	calls    int
	events   []domain.PaymentEvent
}

func (h *flakyHandler) Handle(ctx context.Context, event domain.PaymentEvent) error {
	h.calls++
	if h.calls <= h.failures {
		return errors.New("downstream unavailable")
	}
	h.events = append(h.events, event)
	return nil
}

func eventMessage(t *testing.T, event domain.PaymentEvent) *sarama.ConsumerMessage {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return &sarama.ConsumerMessage{Topic: "payment.completed", Value: payload}
}

func testEvent() domain.PaymentEvent {
	return domain.PaymentEvent{
		PaymentID:        "pay-1",
		UserID:           "user-1",
		Amount:           100,
		Currency:         "RUB",
		Status:           domain.PaymentStatusCompleted,
		Provider:         domain.PaymentProviderSBP,
		SubscriptionTier: domain.SubscriptionTierBasic,
		Timestamp:        time.Now(),
	}
}

func TestProcessMessageRetriesUntilSuccess(t *testing.T) {
	log := logger.New(logger.DEBUG)
	handler := &flakyHandler{failures: 2}

	w := NewWorker(Config{MaxAttempts: 5, RetryDelay: time.Millisecond}, nil, handler, log)

	err := w.processMessage(context.Background(), eventMessage(t, testEvent()))
	require.NoError(t, err)
	assert.Equal(t, 3, handler.calls)
	require.Len(t, handler.events, 1)
	assert.Equal(t, "pay-1", handler.events[0].PaymentID)
}

func TestProcessMessageGivesUpAfterMaxAttempts(t *testing.T) {
	log := logger.New(logger.DEBUG)
	handler := &flakyHandler{failures: 100}

	w := NewWorker(Config{MaxAttempts: 3, RetryDelay: time.Millisecond}, nil, handler, log)

	err := w.processMessage(context.Background(), eventMessage(t, testEvent()))
	require.Error(t, err)
	assert.Equal(t, 3, handler.calls)
}

func TestProcessMessageSkipsMalformedPayload(t *testing.T) {
	log := logger.New(logger.DEBUG)
	handler := &flakyHandler{}

	w := NewWorker(Config{MaxAttempts: 3, RetryDelay: time.Millisecond}, nil, handler, log)

	msg := &sarama.ConsumerMessage{Topic: "payment.completed", Value: []byte("{broken")}
	err := w.processMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Zero(t, handler.calls)
}

func TestProcessMessageStopsOnContextCancel(t *testing.T) {
	log := logger.New(logger.DEBUG)
	handler := &flakyHandler{failures: 100}

	w := NewWorker(Config{MaxAttempts: 10, RetryDelay: time.Hour}, nil, handler, log)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := w.processMessage(ctx, eventMessage(t, testEvent()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestNotificationHandlerIgnoresNonCompleted(t *testing.T) {
	log := logger.New(logger.DEBUG)
	handler := NewNotificationHandler(log)

	event := testEvent()
	event.Status = domain.PaymentStatusPending
	require.NoError(t, handler.Handle(context.Background(), event))

	event.Status = domain.PaymentStatusCompleted
	require.NoError(t, handler.Handle(context.Background(), event))
}
