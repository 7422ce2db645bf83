// Package kafka publishes committed order lifecycle events to a Kafka topic
// so that downstream services (notifications, analytics) can follow orders
// without polling.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"kayayo/internal/core/domain/model/order"

	"github.com/IBM/sarama"
)

// EventMessage is the JSON value written for every event. The record key is
// the order id so that all events of one order land on the same partition.
type EventMessage struct {
	EventID        string    `json:"eventId"`
	OrderID        string    `json:"orderId"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	ActorID        string    `json:"actorId,omitempty"`
	ActorRole      string    `json:"actorRole,omitempty"`
	Recipients     []string  `json:"recipients"`
	OccurredAt     time.Time `json:"occurredAt"`
}

// NewEventMessage flattens a domain event into its wire form.
func NewEventMessage(event order.Event) EventMessage {
	msg := EventMessage{
		EventID:    event.ID.String(),
		OrderID:    event.OrderID.String(),
		Kind:       string(event.Kind),
		Status:     event.Status.String(),
		Stage:      event.Stage,
		Recipients: make([]string, 0, len(event.Recipients)),
		OccurredAt: event.OccurredAt,
	}
	if event.PreviousStatus != order.Unknown {
		msg.PreviousStatus = event.PreviousStatus.String()
	}
	if !event.Actor.ID.IsZero() {
		msg.ActorID = event.Actor.ID.String()
		msg.ActorRole = event.Actor.Role.String()
	}
	for _, r := range event.Recipients {
		msg.Recipients = append(msg.Recipients, r.String())
	}
	return msg
}

// Publisher writes events with a synchronous producer, so an error returned
// by OnOrderEvent means the broker did not acknowledge the record and the
// relay keeps the event in the outbox.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

// NewSyncProducer builds a producer that waits for all in-sync replicas.
func NewSyncProducer(brokers []string) (sarama.SyncProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = 5 * time.Second
	config.Producer.Partitioner = sarama.NewHashPartitioner
	return sarama.NewSyncProducer(brokers, config)
}

func NewPublisher(producer sarama.SyncProducer, topic string, logger *slog.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logger.With("component", "kafka_publisher"),
	}
}

func (p *Publisher) OnOrderEvent(ctx context.Context, event order.Event) error {
	value, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", event.ID, err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.OrderID.String()),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("kind"), Value: []byte(event.Kind)},
		},
	})
	if err != nil {
		return fmt.Errorf("send event %s to %s: %w", event.ID, p.topic, err)
	}

	p.logger.DebugContext(ctx, "event published",
		"event_id", event.ID.String(),
		"order_id", event.OrderID.String(),
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}
