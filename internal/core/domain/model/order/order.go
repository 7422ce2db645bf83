package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

// Order is the aggregate root of the lifecycle. It owns the status, the
// runner/courier slots, the item flags and the handover flags, and records a
// domain Event for every change other parties must be told about.
//
// Order follows these invariants:
//   - buyer, address and fees never change after creation;
//   - the runner slot is bound exactly once and never cleared, and is bound
//     whenever status is runner_accepted..delivered;
//   - the courier slot is bound exactly once, only from ready_for_pickup on,
//     and is bound whenever status is in_transit or delivered;
//   - status only moves along edges of the transition table.
//
// Mutating methods check state only. Who may call them is decided by
// services.OwnershipGuard, and the persisted write is conditional on the
// status the aggregate was loaded with.
type Order struct {
	id              kernel.UUID
	buyerID         kernel.UUID
	runnerID        *kernel.UUID
	courierID       *kernel.UUID
	status          Status
	fees            Fees
	address         kernel.Address
	items           []*Item
	createdAt       time.Time
	confirmedAt     *time.Time
	deliveredAt     *time.Time
	cancelledAt     *time.Time
	runnerVerified  bool
	courierVerified bool

	events []Event
	guard  guard.ConstructorGuard
}

// Snapshot is the persisted state RestoreOrder rebuilds an Order from.
type Snapshot struct {
	ID              kernel.UUID
	BuyerID         kernel.UUID
	RunnerID        *kernel.UUID
	CourierID       *kernel.UUID
	Status          Status
	Fees            Fees
	Address         kernel.Address
	Items           []*Item
	CreatedAt       time.Time
	ConfirmedAt     *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	RunnerVerified  bool
	CourierVerified bool
}

// NewOrder creates a pending order handed over by checkout and records an
// order_created event.
//
// The fees' items total must equal the sum of item subtotals.
//
// Example:
//
//	fees, _ := schedule.Apply(itemsTotal)
//	o, err := order.NewOrder(kernel.NewUUID(), buyerID, address, fees, items, time.Now())
func NewOrder(
	id kernel.UUID,
	buyerID kernel.UUID,
	address kernel.Address,
	fees Fees,
	items []*Item,
	now time.Time,
) (*Order, error) {
	o := &Order{
		status:    Pending,
		createdAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setBuyerID(buyerID),
		o.setAddress(address),
		o.setFees(fees),
		o.setItems(items),
	); err != nil {
		return nil, err
	}

	if err := o.checkItemsTotal(); err != nil {
		return nil, err
	}

	buyer := Actor{ID: buyerID, Role: Buyer}
	o.raise(EventOrderCreated, Unknown, "", buyer, now)
	return o, nil
}

// RestoreOrder rebuilds an order from persistence and rejects inconsistent
// slot/status combinations. No events are recorded.
func RestoreOrder(s Snapshot) (*Order, error) {
	o := &Order{
		runnerID:        s.RunnerID,
		courierID:       s.CourierID,
		createdAt:       s.CreatedAt,
		confirmedAt:     s.ConfirmedAt,
		deliveredAt:     s.DeliveredAt,
		cancelledAt:     s.CancelledAt,
		runnerVerified:  s.RunnerVerified,
		courierVerified: s.CourierVerified,
		guard:           guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setBuyerID(s.BuyerID),
		o.setStatus(s.Status),
		o.setAddress(s.Address),
		o.setFees(s.Fees),
		o.setItems(s.Items),
	); err != nil {
		return nil, err
	}

	if err := o.checkSlots(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was created through NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	return o.guard.Validate(ErrOrderIsNotConstructed)
}

// IsEqual compares orders by identifier.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID         { return o.id }
func (o *Order) BuyerID() kernel.UUID    { return o.buyerID }
func (o *Order) RunnerID() *kernel.UUID  { return o.runnerID }
func (o *Order) CourierID() *kernel.UUID { return o.courierID }
func (o *Order) Status() Status          { return o.status }
func (o *Order) Fees() Fees              { return o.fees }
func (o *Order) Address() kernel.Address { return o.address }
func (o *Order) CreatedAt() time.Time    { return o.createdAt }
func (o *Order) ConfirmedAt() *time.Time { return o.confirmedAt }
func (o *Order) DeliveredAt() *time.Time { return o.deliveredAt }
func (o *Order) CancelledAt() *time.Time { return o.cancelledAt }
func (o *Order) IsRunnerVerified() bool  { return o.runnerVerified }
func (o *Order) IsCourierVerified() bool { return o.courierVerified }
func (o *Order) Items() []*Item          { return slices.Clone(o.items) }
func (o *Order) Events() []Event         { return slices.Clone(o.events) }
func (o *Order) ClearEvents()            { o.events = nil }

// HasRunner reports whether id is the bound runner.
func (o *Order) HasRunner(id kernel.UUID) bool {
	return o.runnerID != nil && o.runnerID.IsEqual(id)
}

// HasCourier reports whether id is the bound courier.
func (o *Order) HasCourier(id kernel.UUID) bool {
	return o.courierID != nil && o.courierID.IsEqual(id)
}

// Item returns the line item with the given id.
func (o *Order) Item(id kernel.UUID) (*Item, error) {
	for _, item := range o.items {
		if item.ID().IsEqual(id) {
			return item, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("item", id)
}

// IsSeller reports whether sellerID stocks at least one item of the order.
func (o *Order) IsSeller(sellerID kernel.UUID) bool {
	return slices.ContainsFunc(o.items, func(i *Item) bool { return i.IsOwnedBy(sellerID) })
}

// SellerItemsReady reports whether every item stocked by sellerID is ready.
// It is false when the seller owns no items.
func (o *Order) SellerItemsReady(sellerID kernel.UUID) bool {
	owns := false
	for _, item := range o.items {
		if !item.IsOwnedBy(sellerID) {
			continue
		}
		owns = true
		if !item.IsSellerReady() {
			return false
		}
	}
	return owns
}

// AllItemsCollected reports whether the runner holds every item.
func (o *Order) AllItemsCollected() bool {
	return !slices.ContainsFunc(o.items, func(i *Item) bool { return !i.IsRunnerCollected() })
}

// Recipients returns the set of buyer, runner and courier, skipping empty
// slots. An identity holding two slots appears once.
func (o *Order) Recipients() []kernel.UUID {
	recipients := []kernel.UUID{o.buyerID}
	for _, slot := range []*kernel.UUID{o.runnerID, o.courierID} {
		if slot != nil && !slices.ContainsFunc(recipients, slot.IsEqual) {
			recipients = append(recipients, *slot)
		}
	}
	return recipients
}

// IsVisibleTo reports whether actor is a party to the order.
func (o *Order) IsVisibleTo(actor Actor) bool {
	switch actor.Role {
	case Buyer:
		return o.buyerID.IsEqual(actor.ID)
	case Seller:
		return o.IsSeller(actor.ID)
	case Runner:
		return o.HasRunner(actor.ID)
	case Courier:
		return o.HasCourier(actor.ID)
	default:
		return false
	}
}

// ApplyTransition moves the order along edge and records a status_changed event.
//
// The order must currently be at edge.From. Business gates:
//   - shopping -> ready_for_pickup needs every item collected;
//   - ready_for_pickup -> in_transit needs a bound courier whose handover was verified.
//
// The first-claim edge is rejected here; it is taken by ClaimRunner.
func (o *Order) ApplyTransition(edge Edge, actor Actor, now time.Time) error {
	if _, ok := LookupEdge(edge.From, edge.To); !ok {
		return NewInvalidTransitionError(o.id, edge.From, edge.To, "no such edge")
	}
	if o.status != edge.From {
		return NewInvalidTransitionError(o.id, o.status, edge.To, fmt.Sprintf("order is %s", o.status))
	}
	if edge.IsFirstClaim() {
		return NewInvalidTransitionError(o.id, edge.From, edge.To, "runner slot is bound by claim")
	}
	if err := o.checkGates(edge); err != nil {
		return err
	}

	o.status = edge.To
	at := now.UTC()
	switch edge.To { //nolint:exhaustive // only these statuses carry timestamps
	case SellerConfirmed:
		o.confirmedAt = &at
	case Delivered:
		o.deliveredAt = &at
	case Cancelled:
		o.cancelledAt = &at
	}

	o.raise(EventStatusChanged, edge.From, "", actor, now)
	return nil
}

// ClaimRunner binds the runner slot and moves seller_confirmed -> runner_accepted.
func (o *Order) ClaimRunner(actor Actor, now time.Time) error {
	if actor.Role != Runner {
		return NewUnauthorizedError(o.id, actor, "only runners claim the runner slot")
	}
	if err := o.ClaimConflict(Runner); err != nil {
		return err
	}

	runnerID := actor.ID
	o.runnerID = &runnerID
	o.status = RunnerAccepted
	o.raise(EventRunnerAssigned, SellerConfirmed, "", actor, now)
	return nil
}

// ClaimCourier binds the courier slot while the order waits at
// ready_for_pickup. Status is unchanged: in_transit needs the verified
// runner -> courier handover first.
func (o *Order) ClaimCourier(actor Actor, now time.Time) error {
	if actor.Role != Courier {
		return NewUnauthorizedError(o.id, actor, "only couriers claim the courier slot")
	}
	if err := o.ClaimConflict(Courier); err != nil {
		return err
	}

	courierID := actor.ID
	o.courierID = &courierID
	o.raise(EventCourierAssigned, o.status, "", actor, now)
	return nil
}

// ClaimConflict explains why slot cannot be claimed in the current state:
// AlreadyClaimed when it is bound (to anyone), InvalidTransition when it is
// empty but the order is not at the claimable status. It returns nil when a
// claim would succeed.
func (o *Order) ClaimConflict(slot Role) error {
	switch slot { //nolint:exhaustive // only runner and courier slots exist
	case Runner:
		if o.runnerID != nil {
			return NewAlreadyClaimedError(o.id, Runner)
		}
		if o.status != SellerConfirmed {
			return NewInvalidTransitionError(o.id, o.status, RunnerAccepted, "runner slot opens at seller_confirmed")
		}
	case Courier:
		if o.courierID != nil {
			return NewAlreadyClaimedError(o.id, Courier)
		}
		if o.status != ReadyForPickup {
			return NewInvalidTransitionError(o.id, o.status, InTransit, "courier slot opens at ready_for_pickup")
		}
	default:
		return errs.NewValueIsInvalidErrorWithCause("slot", fmt.Errorf("%s has no slot", slot))
	}
	return nil
}

// MarkItemReady sets the item's sellerReady flag. The caller must stock the
// item. It reports whether anything changed; a repeated call is a no-op.
func (o *Order) MarkItemReady(itemID kernel.UUID, actor Actor) (bool, error) {
	item, err := o.Item(itemID)
	if err != nil {
		return false, err
	}
	if actor.Role != Seller || !item.IsOwnedBy(actor.ID) {
		return false, NewUnauthorizedError(o.id, actor, "item is stocked by another seller")
	}
	if o.status != SellerConfirmed && o.status != RunnerAccepted && o.status != Shopping {
		return false, NewInvalidTransitionError(o.id, o.status, o.status,
			"items can be staged only between seller_confirmed and shopping")
	}
	if item.sellerReady {
		return false, nil
	}
	item.sellerReady = true
	return true, nil
}

// MarkItemCollected sets the item's runnerCollected flag. The caller must be
// the bound runner, the order must be shopping with the seller handover
// verified, and the item must be ready.
func (o *Order) MarkItemCollected(itemID kernel.UUID, actor Actor) (bool, error) {
	item, err := o.Item(itemID)
	if err != nil {
		return false, err
	}
	if actor.Role != Runner || !o.HasRunner(actor.ID) {
		return false, NewUnauthorizedError(o.id, actor, "caller is not the bound runner")
	}
	if o.status != Shopping {
		return false, NewInvalidTransitionError(o.id, o.status, o.status, "items can be collected only while shopping")
	}
	if item.runnerCollected {
		return false, nil
	}
	if !o.runnerVerified {
		return false, NewInvalidTransitionError(o.id, o.status, o.status, "seller handover is not verified")
	}
	if !item.sellerReady {
		return false, NewInvalidTransitionError(o.id, o.status, o.status,
			fmt.Sprintf("item %s is not ready", item.ID()))
	}
	item.runnerCollected = true
	return true, nil
}

// MarkRunnerVerified records the verified seller -> runner handover.
func (o *Order) MarkRunnerVerified(verifier Actor, now time.Time) error {
	if o.runnerVerified {
		return NewInvalidTransitionError(o.id, o.status, o.status, "seller handover already verified")
	}
	if o.status != RunnerAccepted && o.status != Shopping {
		return NewInvalidTransitionError(o.id, o.status, o.status, "seller handover happens at runner_accepted or shopping")
	}
	o.runnerVerified = true
	o.raise(EventHandoverVerified, o.status, StageSellerToRunner, verifier, now)
	return nil
}

// MarkCourierVerified records the verified runner -> courier handover.
func (o *Order) MarkCourierVerified(verifier Actor, now time.Time) error {
	if o.courierVerified {
		return NewInvalidTransitionError(o.id, o.status, o.status, "courier handover already verified")
	}
	if o.status != ReadyForPickup || o.courierID == nil {
		return NewInvalidTransitionError(o.id, o.status, InTransit, "courier handover needs a claimed ready_for_pickup order")
	}
	o.courierVerified = true
	o.raise(EventHandoverVerified, o.status, StageRunnerToCourier, verifier, now)
	return nil
}

func (o *Order) checkGates(edge Edge) error {
	switch edge {
	case Edge{From: Shopping, To: ReadyForPickup}:
		if !o.AllItemsCollected() {
			return NewInvalidTransitionError(o.id, edge.From, edge.To, "not every item is collected")
		}
	case Edge{From: ReadyForPickup, To: InTransit}:
		if o.courierID == nil {
			return NewInvalidTransitionError(o.id, edge.From, edge.To, "no courier has claimed the order")
		}
		if !o.courierVerified {
			return NewInvalidTransitionError(o.id, edge.From, edge.To, "courier handover is not verified")
		}
	}
	return nil
}

func (o *Order) raise(kind EventKind, previous Status, stage string, actor Actor, now time.Time) {
	o.events = append(o.events, Event{
		ID:             kernel.NewUUID(),
		OrderID:        o.id,
		Kind:           kind,
		Status:         o.status,
		PreviousStatus: previous,
		Stage:          stage,
		Actor:          actor,
		Recipients:     o.Recipients(),
		OccurredAt:     now.UTC(),
	})
}

func (o *Order) checkItemsTotal() error {
	sum := kernel.ZeroMoney()
	for _, item := range o.items {
		sum = sum.Add(item.Subtotal())
	}
	if !sum.IsEqual(o.fees.ItemsTotal()) {
		return errs.NewValueIsInvalidErrorWithCause(
			"items total",
			fmt.Errorf("%s does not match item subtotals %s", o.fees.ItemsTotal(), sum),
		)
	}
	return nil
}

func (o *Order) checkSlots() error {
	switch {
	case o.runnerID == nil && o.status.requiresRunner():
		return errs.NewValueIsInvalidErrorWithCause("runner", fmt.Errorf("%s order has no runner", o.status))
	case o.runnerID != nil && o.status < RunnerAccepted:
		return errs.NewValueIsInvalidErrorWithCause("runner", fmt.Errorf("%s order cannot have a runner", o.status))
	case o.courierID == nil && o.status.requiresCourier():
		return errs.NewValueIsInvalidErrorWithCause("courier", fmt.Errorf("%s order has no courier", o.status))
	case o.courierID != nil && !o.status.allowsCourier():
		return errs.NewValueIsInvalidErrorWithCause("courier", fmt.Errorf("%s order cannot have a courier", o.status))
	}
	return nil
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

func (o *Order) setBuyerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("buyer id", err)
	}
	o.buyerID = id
	return nil
}

func (o *Order) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	return nil
}

func (o *Order) setAddress(address kernel.Address) error {
	if err := address.Validate(); err != nil {
		return err
	}
	o.address = address
	return nil
}

func (o *Order) setFees(fees Fees) error {
	if err := fees.Validate(); err != nil {
		return err
	}
	o.fees = fees
	return nil
}

func (o *Order) setItems(items []*Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = slices.Clone(items)
	return nil
}
