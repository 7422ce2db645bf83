// Package ports defines the contracts between the application core and its
// adapters: repositories bound to a unit of work, the event publisher and the
// catalog reader.
package ports

import (
	"context"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates. Every write that changes status
// or a slot is conditional on the persisted state, so that concurrent
// requests on the same order are linearised by the database.
type OrderRepository interface {
	// Add persists a new order with its items.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads an order with its items. Returns errs.ErrObjectNotFound when missing.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateIfStatus writes the aggregate's status, timestamps, handover flags
	// and item flags only if the persisted status still equals expected.
	// It reports whether the write happened; false leaves the record unchanged.
	UpdateIfStatus(ctx context.Context, aggregate *order.Order, expected order.Status) (bool, error)

	// ClaimRunner binds the aggregate's runner with
	//   UPDATE orders SET runner_id = X, status = 'runner_accepted'
	//   WHERE id = ? AND status = 'seller_confirmed' AND runner_id IS NULL
	// and reports whether this caller won.
	ClaimRunner(ctx context.Context, aggregate *order.Order) (bool, error)

	// ClaimCourier binds the aggregate's courier with
	//   UPDATE orders SET courier_id = X
	//   WHERE id = ? AND status = 'ready_for_pickup' AND courier_id IS NULL
	// and reports whether this caller won.
	ClaimCourier(ctx context.Context, aggregate *order.Order) (bool, error)
}
