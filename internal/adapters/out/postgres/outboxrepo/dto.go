// Package outboxrepo stores lifecycle events until the relay has streamed and
// published them.
package outboxrepo

import (
	"encoding/json"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventDTO is a row of order_events_outbox. Seq is assigned by the database
// and orders events by insertion.
type EventDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq         int64     `gorm:"->"`
	OrderID     uuid.UUID `gorm:"type:uuid"`
	Kind        string
	Payload     datatypes.JSON
	OccurredAt  time.Time
	StreamedAt  *time.Time
	PublishedAt *time.Time
}

func (EventDTO) TableName() string {
	return "order_events_outbox"
}

type payload struct {
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	ActorID        string    `json:"actorId,omitempty"`
	ActorRole      string    `json:"actorRole,omitempty"`
	Recipients     []string  `json:"recipients"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func fromDomain(event order.Event) (EventDTO, error) {
	p := payload{
		Status:     event.Status.String(),
		Stage:      event.Stage,
		Recipients: make([]string, 0, len(event.Recipients)),
		OccurredAt: event.OccurredAt,
	}
	if event.PreviousStatus != order.Unknown {
		p.PreviousStatus = event.PreviousStatus.String()
	}
	if !event.Actor.ID.IsZero() {
		p.ActorID = event.Actor.ID.String()
		p.ActorRole = event.Actor.Role.String()
	}
	for _, r := range event.Recipients {
		p.Recipients = append(p.Recipients, r.String())
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return EventDTO{}, err
	}

	return EventDTO{
		ID:         event.ID.Bytes(),
		OrderID:    event.OrderID.Bytes(),
		Kind:       string(event.Kind),
		Payload:    datatypes.JSON(raw),
		OccurredAt: event.OccurredAt,
	}, nil
}

func toDomain(dto EventDTO) (order.Event, error) {
	var p payload
	if err := json.Unmarshal(dto.Payload, &p); err != nil {
		return order.Event{}, err
	}

	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Event{}, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return order.Event{}, err
	}
	status, err := order.ParseStatus(p.Status)
	if err != nil {
		return order.Event{}, err
	}

	event := order.Event{
		ID:         id,
		OrderID:    orderID,
		Kind:       order.EventKind(dto.Kind),
		Status:     status,
		Stage:      p.Stage,
		Recipients: make([]kernel.UUID, 0, len(p.Recipients)),
		OccurredAt: p.OccurredAt,
	}
	if p.PreviousStatus != "" {
		if event.PreviousStatus, err = order.ParseStatus(p.PreviousStatus); err != nil {
			return order.Event{}, err
		}
	}
	if p.ActorID != "" {
		actorID, idErr := kernel.UUIDFromString(p.ActorID)
		if idErr != nil {
			return order.Event{}, idErr
		}
		role, roleErr := order.ParseRole(p.ActorRole)
		if roleErr != nil {
			return order.Event{}, roleErr
		}
		event.Actor = order.Actor{ID: actorID, Role: role}
	}
	for _, r := range p.Recipients {
		recipient, rErr := kernel.UUIDFromString(r)
		if rErr != nil {
			return order.Event{}, rErr
		}
		event.Recipients = append(event.Recipients, recipient)
	}

	return event, nil
}
