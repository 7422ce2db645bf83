package queries

import (
	"errors"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

const (
	DefaultClaimableLimit = 50
	MaxClaimableLimit     = 200
)

var ErrGetClaimableOrdersQueryIsNotConstructed = errors.New(
	"GetClaimableOrdersQuery must be created via NewGetClaimableOrdersQuery constructor",
)

// GetClaimableOrdersQuery lists orders whose slot for the caller's role is
// open: seller_confirmed without a runner for runners, ready_for_pickup
// without a courier for couriers. Oldest first.
//
// Example:
//
//	query, err := NewGetClaimableOrdersQuery(runner, 0)
//	if err != nil {
//	    return err
//	}
//	orders, err := handler.Handle(ctx, query)
type GetClaimableOrdersQuery struct {
	caller order.Actor
	limit  int

	guard guard.ConstructorGuard
}

// NewGetClaimableOrdersQuery accepts runners and couriers only. A zero limit
// means DefaultClaimableLimit.
func NewGetClaimableOrdersQuery(caller order.Actor, limit int) (GetClaimableOrdersQuery, error) {
	caller, err := order.NewActor(caller.ID, caller.Role)
	if err != nil {
		return GetClaimableOrdersQuery{}, err
	}
	if caller.Role != order.Runner && caller.Role != order.Courier {
		return GetClaimableOrdersQuery{}, order.NewUnauthorizedError(kernel.UUID{}, caller, "only runners and couriers claim orders")
	}
	if limit == 0 {
		limit = DefaultClaimableLimit
	}
	if limit < 1 || limit > MaxClaimableLimit {
		return GetClaimableOrdersQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxClaimableLimit)
	}
	return GetClaimableOrdersQuery{
		caller: caller,
		limit:  limit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q GetClaimableOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetClaimableOrdersQueryIsNotConstructed)
}

func (q GetClaimableOrdersQuery) Caller() order.Actor { return q.caller }
func (q GetClaimableOrdersQuery) Limit() int          { return q.limit }

// GetClaimableOrdersQueryResponse is one claimable order as shown to a
// runner or courier deciding whether to take it.
type GetClaimableOrdersQueryResponse struct {
	ID          kernel.UUID
	Status      order.Status
	Address     kernel.Address
	ItemCount   int
	ItemsTotal  kernel.Money
	RunnerFee   kernel.Money
	DeliveryFee kernel.Money
	CreatedAt   time.Time
}
