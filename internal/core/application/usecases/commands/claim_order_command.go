package commands

import (
	"errors"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrClaimOrderCommandIsNotConstructed = errors.New(
	"ClaimOrderCommand must be created via NewClaimOrderCommand constructor",
)

// ClaimOrderCommand asks to bind actor to the runner or courier slot of an
// order, depending on actor's role.
type ClaimOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   order.Actor

	guard guard.ConstructorGuard
}

func NewClaimOrderCommand(orderID kernel.UUID, actor order.Actor) (ClaimOrderCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ClaimOrderCommand{}, err
	}
	actor, err := order.NewActor(actor.ID, actor.Role)
	if err != nil {
		return ClaimOrderCommand{}, err
	}
	return ClaimOrderCommand{orderID: orderID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c ClaimOrderCommand) Validate() error {
	return c.guard.Validate(ErrClaimOrderCommandIsNotConstructed)
}

func (c ClaimOrderCommand) OrderID() kernel.UUID { return c.orderID }
func (c ClaimOrderCommand) Actor() order.Actor   { return c.actor }
