package commands

import (
	"context"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
)

// MarkItemCommandHandler updates the per-item flags consumed by the
// shopping -> ready_for_pickup gate and the seller handover. Repeated calls
// are no-ops; real changes are written conditionally on the loaded status.
type MarkItemCommandHandler struct {
	uowFactory OrderUoWFactory
}

func NewMarkItemCommandHandler(uowFactory OrderUoWFactory) MarkItemCommandHandler {
	return MarkItemCommandHandler{uowFactory: uowFactory}
}

// HandleReady sets sellerReady.
func (h MarkItemCommandHandler) HandleReady(ctx context.Context, cmd MarkItemReadyCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.mark(ctx, cmd.OrderID(), func(o *order.Order) (bool, error) {
		return o.MarkItemReady(cmd.ItemID(), cmd.Actor())
	})
}

// HandleCollected sets runnerCollected.
func (h MarkItemCommandHandler) HandleCollected(ctx context.Context, cmd MarkItemCollectedCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.mark(ctx, cmd.OrderID(), func(o *order.Order) (bool, error) {
		return o.MarkItemCollected(cmd.ItemID(), cmd.Actor())
	})
}

func (h MarkItemCommandHandler) mark(
	ctx context.Context,
	orderID kernel.UUID,
	apply func(o *order.Order) (bool, error),
) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	status := o.Status()
	changed, err := apply(o)
	if err != nil {
		return nil, err
	}
	if !changed {
		return o, nil
	}

	updated, err := orderRepo.UpdateIfStatus(ctx, o, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, order.NewInvalidTransitionError(o.ID(), status, status, "order changed concurrently")
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
