package commands

import (
	"errors"
	"fmt"
	"strings"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrOrderLinesAreRequired = errors.New("at least one order line is required")
)

// OrderLine is one product the buyer checked out.
type OrderLine struct {
	ProductID        kernel.UUID
	Quantity         int
	SubstitutionNote string
}

// CreateOrderCommand carries the checkout hand-off: the buyer, the delivery
// address and the lines, passed explicitly rather than read from any session
// state.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(kernel.NewUUID(), buyer, address, []OrderLine{
//	    {ProductID: tomatoes, Quantity: 2},
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid checkout: %w", err)
//	}
//	o, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	buyer   order.Actor
	address kernel.Address
	lines   []OrderLine

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the hand-off. The caller must act as a buyer.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	buyer order.Actor,
	address kernel.Address,
	lines []OrderLine,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderID(orderID),
		cmd.setBuyer(buyer),
		cmd.setAddress(address),
		cmd.setLines(lines),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) OrderID() kernel.UUID    { return c.orderID }
func (c CreateOrderCommand) Buyer() order.Actor      { return c.buyer }
func (c CreateOrderCommand) Address() kernel.Address { return c.address }
func (c CreateOrderCommand) Lines() []OrderLine      { return append([]OrderLine(nil), c.lines...) }

// ProductIDs lists the distinct products referenced by the lines.
func (c CreateOrderCommand) ProductIDs() []kernel.UUID {
	seen := make(map[kernel.UUID]struct{}, len(c.lines))
	ids := make([]kernel.UUID, 0, len(c.lines))
	for _, line := range c.lines {
		if _, ok := seen[line.ProductID]; ok {
			continue
		}
		seen[line.ProductID] = struct{}{}
		ids = append(ids, line.ProductID)
	}
	return ids
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setBuyer(buyer order.Actor) error {
	if err := buyer.ID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("buyer", err)
	}
	if buyer.Role != order.Buyer {
		return order.NewUnauthorizedError(c.orderID, buyer, "only buyers check out")
	}
	c.buyer = buyer
	return nil
}

func (c *CreateOrderCommand) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	c.address = address
	return nil
}

func (c *CreateOrderCommand) setLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return ErrOrderLinesAreRequired
	}
	copied := make([]OrderLine, len(lines))
	for i, line := range lines {
		if err := line.ProductID.Validate(); err != nil {
			return errs.NewValueIsRequiredErrorWithCause(fmt.Sprintf("lines[%d].productId", i), err)
		}
		if line.Quantity <= 0 {
			return errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("lines[%d].quantity", i),
				fmt.Errorf("%d is not greater than 0", line.Quantity),
			)
		}
		line.SubstitutionNote = strings.TrimSpace(line.SubstitutionNote)
		copied[i] = line
	}
	c.lines = copied
	return nil
}
