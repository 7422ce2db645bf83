package services

import (
	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/order"
)

// OwnershipGuard turns "this role may take this edge" into "this caller may
// take this edge on this order".
//
// Business rules:
//   - the role must hold a grant for the edge
//   - the first-claim edge passes only while the runner slot is empty
//   - buyer edges need the order's buyer, runner edges the bound runner,
//     courier edges the bound courier
//   - the seller edge needs a seller stocking at least one item
//
// Failures are order.UnauthorizedError, except a first claim on a bound slot
// which is order.AlreadyClaimedError.
//
// Example usage:
//
//	edge, ok := order.LookupEdge(o.Status(), target)
//	if !ok {
//	    return order.NewInvalidTransitionError(o.ID(), o.Status(), target, "no such edge")
//	}
//	if err := guard.CheckTransition(o, edge, actor); err != nil {
//	    return err
//	}
type OwnershipGuard struct{}

func NewOwnershipGuard() OwnershipGuard {
	return OwnershipGuard{}
}

// CheckTransition authorises actor for edge on o.
func (g OwnershipGuard) CheckTransition(o *order.Order, edge order.Edge, actor order.Actor) error {
	if !order.IsGranted(actor.Role, edge) {
		return order.NewUnauthorizedError(o.ID(), actor, actor.Role.String()+" may not take "+edge.String())
	}

	if edge.IsFirstClaim() {
		if o.RunnerID() != nil {
			return order.NewAlreadyClaimedError(o.ID(), order.Runner)
		}
		return nil
	}

	if !o.IsVisibleTo(actor) {
		return order.NewUnauthorizedError(o.ID(), actor, "caller is not the order's "+actor.Role.String())
	}
	return nil
}

// CheckClaim authorises a slot claim. Only runners and couriers have slots;
// binding is left to the conditional write.
func (g OwnershipGuard) CheckClaim(o *order.Order, actor order.Actor) error {
	if actor.Role != order.Runner && actor.Role != order.Courier {
		return order.NewUnauthorizedError(o.ID(), actor, actor.Role.String()+" has no slot to claim")
	}
	return nil
}

// CheckHandoverIssuer authorises the party that displays the code: the bound
// runner for seller_to_runner, the bound courier for runner_to_courier.
func (g OwnershipGuard) CheckHandoverIssuer(o *order.Order, stage handover.Stage, actor order.Actor) error {
	if actor.Role != stage.IssuerRole() || !o.IsVisibleTo(actor) {
		return order.NewUnauthorizedError(o.ID(), actor, "only the bound "+stage.IssuerRole().String()+" displays the "+stage.String()+" code")
	}
	return nil
}

// CheckHandoverVerifier authorises the party that submits the code: a seller
// stocking items for seller_to_runner, the bound runner for runner_to_courier.
func (g OwnershipGuard) CheckHandoverVerifier(o *order.Order, stage handover.Stage, actor order.Actor) error {
	if actor.Role != stage.VerifierRole() || !o.IsVisibleTo(actor) {
		return order.NewUnauthorizedError(o.ID(), actor, "caller may not verify the "+stage.String()+" code")
	}
	return nil
}

// CheckView authorises reading the order.
func (g OwnershipGuard) CheckView(o *order.Order, actor order.Actor) error {
	if !o.IsVisibleTo(actor) {
		return order.NewUnauthorizedError(o.ID(), actor, "caller is not a party to the order")
	}
	return nil
}

