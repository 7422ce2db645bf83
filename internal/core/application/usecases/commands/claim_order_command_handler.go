package commands

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"
	"kayayo/internal/core/ports"
)

// ClaimOrderCommandHandler is the assignment claimer. Runners claim at
// seller_confirmed (binding the slot and accepting the order), couriers at
// ready_for_pickup (binding the slot only). The claim is one conditional
// write; of N concurrent claimers exactly one wins and the rest get
// order.ErrAlreadyClaimed.
type ClaimOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	guard      services.OwnershipGuard
}

func NewClaimOrderCommandHandler(uowFactory OrderUoWFactory, guard services.OwnershipGuard) ClaimOrderCommandHandler {
	return ClaimOrderCommandHandler{
		uowFactory: uowFactory,
		guard:      guard,
	}
}

// Handle claims the slot and returns the bound order.
func (h ClaimOrderCommandHandler) Handle(ctx context.Context, cmd ClaimOrderCommand) (*order.Order, error) {
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

	if err = h.guard.CheckClaim(o, cmd.Actor()); err != nil {
		return nil, err
	}

	if err = claimSlot(ctx, orderRepo, o, cmd.Actor(), time.Now()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// claimSlot binds actor's slot on o. The aggregate is mutated first so that a
// stale read already showing a bound slot fails fast; the conditional write
// then decides the race. A lost race is classified from a fresh read.
func claimSlot(ctx context.Context, repo ports.OrderRepository, o *order.Order, actor order.Actor, now time.Time) error {
	var (
		won bool
		err error
	)

	switch actor.Role { //nolint:exhaustive // only runners and couriers hold slots
	case order.Runner:
		if err = o.ClaimRunner(actor, now); err != nil {
			return err
		}
		won, err = repo.ClaimRunner(ctx, o)
	case order.Courier:
		if err = o.ClaimCourier(actor, now); err != nil {
			return err
		}
		won, err = repo.ClaimCourier(ctx, o)
	default:
		return order.NewUnauthorizedError(o.ID(), actor, actor.Role.String()+" has no slot to claim")
	}
	if err != nil {
		return err
	}
	if won {
		return nil
	}

	current, err := repo.Get(ctx, o.ID())
	if err != nil {
		return err
	}
	if conflict := current.ClaimConflict(actor.Role); conflict != nil {
		return conflict
	}
	return order.NewAlreadyClaimedError(o.ID(), actor.Role)
}
