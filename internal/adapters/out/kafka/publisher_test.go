package kafka_test

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"kayayo/internal/adapters/out/kafka"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func statusChanged() order.Event {
	buyer := kernel.NewUUID()
	seller := kernel.NewUUID()
	return order.Event{
		ID:             kernel.NewUUID(),
		OrderID:        kernel.NewUUID(),
		Kind:           order.EventStatusChanged,
		Status:         order.SellerConfirmed,
		PreviousStatus: order.Pending,
		Actor:          order.Actor{ID: seller, Role: order.Seller},
		Recipients:     []kernel.UUID{buyer},
		OccurredAt:     time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestPublisher_OnOrderEvent(t *testing.T) {
	t.Parallel()

	event := statusChanged()
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "order-events", msg.Topic)

		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, event.OrderID.String(), string(key))

		raw, err := msg.Value.Encode()
		require.NoError(t, err)
		var got kafka.EventMessage
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, "status_changed", got.Kind)
		assert.Equal(t, "seller_confirmed", got.Status)
		assert.Equal(t, "pending", got.PreviousStatus)
		assert.Equal(t, "seller", got.ActorRole)
		assert.Equal(t, []string{event.Recipients[0].String()}, got.Recipients)
		return nil
	})

	publisher := kafka.NewPublisher(producer, "order-events", discardLogger())

	require.NoError(t, publisher.OnOrderEvent(t.Context(), event))
	require.NoError(t, publisher.Close())
}

func TestPublisher_OnOrderEvent_BrokerFailure(t *testing.T) {
	t.Parallel()

	brokerErr := errors.New("leader not available")
	config := mocks.NewTestConfig()
	config.Producer.Return.Successes = true
	producer := mocks.NewSyncProducer(t, config)
	producer.ExpectSendMessageAndFail(brokerErr)

	publisher := kafka.NewPublisher(producer, "order-events", discardLogger())

	err := publisher.OnOrderEvent(t.Context(), statusChanged())

	require.ErrorIs(t, err, brokerErr)
	require.NoError(t, publisher.Close())
}

func TestNewEventMessage_OrderCreatedHasNoPreviousStatus(t *testing.T) {
	t.Parallel()

	event := statusChanged()
	event.Kind = order.EventOrderCreated
	event.Status = order.Pending
	event.PreviousStatus = order.Unknown

	msg := kafka.NewEventMessage(event)

	assert.Empty(t, msg.PreviousStatus)
	assert.Equal(t, "pending", msg.Status)
}
