package queries

import (
	"errors"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
	"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
)

// GetOrderHistoryQuery lists the status changes of an order, oldest first.
type GetOrderHistoryQuery struct {
	orderID kernel.UUID
	caller  order.Actor

	guard guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID kernel.UUID, caller order.Actor) (GetOrderHistoryQuery, error) {
	caller, actorErr := order.NewActor(caller.ID, caller.Role)
	if err := errors.Join(orderID.Validate(), actorErr); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	return GetOrderHistoryQuery{
		orderID: orderID,
		caller:  caller,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() kernel.UUID { return q.orderID }
func (q GetOrderHistoryQuery) Caller() order.Actor  { return q.caller }

// GetOrderHistoryQueryResponse is one status change. From is Unknown for
// the creation entry; Actor is zero when the change had no caller.
type GetOrderHistoryQueryResponse struct {
	From       order.Status
	To         order.Status
	Actor      order.Actor
	OccurredAt time.Time
}
