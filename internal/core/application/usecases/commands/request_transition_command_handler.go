package commands

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"
)

// RequestTransitionCommandHandler is the single write path for order status.
//
// Steps, all inside one unit of work:
//  1. load the persisted order
//  2. edge lookup against the persisted status (InvalidTransition)
//  3. grant and ownership check (Unauthorized)
//  4. the first-claim edge is handed to the assignment claimer
//  5. business gates and the mutation on the aggregate (InvalidTransition)
//  6. write conditional on the loaded status; zero rows is InvalidTransition
//  7. commit, which appends the status_changed event to the outbox
//
// Any failure rolls back, leaving the order untouched.
type RequestTransitionCommandHandler struct {
	uowFactory OrderUoWFactory
	guard      services.OwnershipGuard
}

func NewRequestTransitionCommandHandler(uowFactory OrderUoWFactory, guard services.OwnershipGuard) RequestTransitionCommandHandler {
	return RequestTransitionCommandHandler{
		uowFactory: uowFactory,
		guard:      guard,
	}
}

// Handle applies the transition and returns the updated order.
func (h RequestTransitionCommandHandler) Handle(ctx context.Context, cmd RequestTransitionCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	from := o.Status()
	edge, ok := order.LookupEdge(from, cmd.Target())
	if !ok {
		return nil, order.NewInvalidTransitionError(o.ID(), from, cmd.Target(), "no such edge")
	}

	if err = h.guard.CheckTransition(o, edge, cmd.Actor()); err != nil {
		return nil, err
	}

	now := time.Now()
	if edge.IsFirstClaim() {
		if err = claimSlot(ctx, orderRepo, o, cmd.Actor(), now); err != nil {
			return nil, err
		}
	} else {
		if err = o.ApplyTransition(edge, cmd.Actor(), now); err != nil {
			return nil, err
		}
		updated, err := orderRepo.UpdateIfStatus(ctx, o, from)
		if err != nil {
			return nil, err
		}
		if !updated {
			return nil, order.NewInvalidTransitionError(o.ID(), from, cmd.Target(), "order changed concurrently")
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
