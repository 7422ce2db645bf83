package queries

import (
	"context"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"
)

// OrderReader loads an order outside of a transaction.
type OrderReader interface {
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}

// GetOrderQueryHandler returns the order with its items to the buyer, the
// bound runner or courier, or a seller owning one of the items.
type GetOrderQueryHandler struct {
	orders OrderReader
	guard  services.OwnershipGuard
}

func NewGetOrderQueryHandler(orders OrderReader, guard services.OwnershipGuard) GetOrderQueryHandler {
	return GetOrderQueryHandler{orders: orders, guard: guard}
}

func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	if err = h.guard.CheckView(o, query.Caller()); err != nil {
		return nil, err
	}

	return o, nil
}
