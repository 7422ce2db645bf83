package ports

import (
	"context"

	"kayayo/internal/core/domain/model/order"
)

// EventPublisher is the outbound real-time transport. Delivery to each
// recipient is best effort; an error means the event should be retried.
type EventPublisher interface {
	OnOrderEvent(ctx context.Context, event order.Event) error
}
