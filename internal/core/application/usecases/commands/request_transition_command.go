package commands

import (
	"errors"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrRequestTransitionCommandIsNotConstructed = errors.New(
	"RequestTransitionCommand must be created via NewRequestTransitionCommand constructor",
)

// RequestTransitionCommand asks to move an order to target status on behalf
// of actor. The current status is never taken from the caller; it is read
// from storage by the handler.
//
// Example:
//
//	cmd, err := NewRequestTransitionCommand(orderID, order.Actor{ID: sellerID, Role: order.Seller}, order.SellerConfirmed)
type RequestTransitionCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	actor   order.Actor
	target  order.Status

	guard guard.ConstructorGuard
}

func NewRequestTransitionCommand(orderID kernel.UUID, actor order.Actor, target order.Status) (RequestTransitionCommand, error) {
	cmd := RequestTransitionCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setActor(actor),
		cmd.setTarget(target),
	); err != nil {
		return RequestTransitionCommand{}, err
	}

	return cmd, nil
}

func (c RequestTransitionCommand) Validate() error {
	return c.guard.Validate(ErrRequestTransitionCommandIsNotConstructed)
}

func (c RequestTransitionCommand) OrderID() kernel.UUID { return c.orderID }
func (c RequestTransitionCommand) Actor() order.Actor   { return c.actor }
func (c RequestTransitionCommand) Target() order.Status { return c.target }

func (c *RequestTransitionCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *RequestTransitionCommand) setActor(actor order.Actor) error {
	actor, err := order.NewActor(actor.ID, actor.Role)
	if err != nil {
		return err
	}
	c.actor = actor
	return nil
}

func (c *RequestTransitionCommand) setTarget(target order.Status) error {
	if err := target.Validate(); err != nil {
		return err
	}
	c.target = target
	return nil
}
