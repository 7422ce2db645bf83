package commands

import (
	"errors"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var (
	ErrMarkItemReadyCommandIsNotConstructed = errors.New(
		"MarkItemReadyCommand must be created via NewMarkItemReadyCommand constructor",
	)
	ErrMarkItemCollectedCommandIsNotConstructed = errors.New(
		"MarkItemCollectedCommand must be created via NewMarkItemCollectedCommand constructor",
	)
)

type itemCommand struct {
	orderID kernel.UUID
	itemID  kernel.UUID
	actor   order.Actor

	guard guard.ConstructorGuard
}

func newItemCommand(orderID, itemID kernel.UUID, actor order.Actor) (itemCommand, error) {
	actor, actorErr := order.NewActor(actor.ID, actor.Role)
	if err := errors.Join(orderID.Validate(), itemID.Validate(), actorErr); err != nil {
		return itemCommand{}, err
	}
	return itemCommand{orderID: orderID, itemID: itemID, actor: actor, guard: guard.NewConstructorGuard()}, nil
}

func (c itemCommand) OrderID() kernel.UUID { return c.orderID }
func (c itemCommand) ItemID() kernel.UUID  { return c.itemID }
func (c itemCommand) Actor() order.Actor   { return c.actor }

// MarkItemReadyCommand is a seller staging one of their items for the runner.
type MarkItemReadyCommand struct {
	itemCommand
}

func NewMarkItemReadyCommand(orderID, itemID kernel.UUID, seller order.Actor) (MarkItemReadyCommand, error) {
	cmd, err := newItemCommand(orderID, itemID, seller)
	return MarkItemReadyCommand{itemCommand: cmd}, err
}

func (c MarkItemReadyCommand) Validate() error {
	return c.guard.Validate(ErrMarkItemReadyCommandIsNotConstructed)
}

// MarkItemCollectedCommand is the bound runner confirming they hold an item.
type MarkItemCollectedCommand struct {
	itemCommand
}

func NewMarkItemCollectedCommand(orderID, itemID kernel.UUID, runner order.Actor) (MarkItemCollectedCommand, error) {
	cmd, err := newItemCommand(orderID, itemID, runner)
	return MarkItemCollectedCommand{itemCommand: cmd}, err
}

func (c MarkItemCollectedCommand) Validate() error {
	return c.guard.Validate(ErrMarkItemCollectedCommandIsNotConstructed)
}
