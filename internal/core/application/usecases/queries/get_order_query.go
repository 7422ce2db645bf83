// Package queries contains the read use cases. They run outside any unit of
// work and never change state.
package queries

import (
	"errors"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery loads one order for a party to it.
type GetOrderQuery struct {
	orderID kernel.UUID
	caller  order.Actor

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID, caller order.Actor) (GetOrderQuery, error) {
	caller, actorErr := order.NewActor(caller.ID, caller.Role)
	if err := errors.Join(orderID.Validate(), actorErr); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{
		orderID: orderID,
		caller:  caller,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderQuery) Caller() order.Actor  { return q.caller }
