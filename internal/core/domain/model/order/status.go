package order

import (
	"fmt"

	"kayayo/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// State machine:
//
//	pending ─> seller_confirmed ─> runner_accepted ─> shopping ─> ready_for_pickup ─> in_transit ─> delivered
//	   │              │                   │              │                │                │
//	   └──────────────┴───────────────────┴──────────────┴────────────────┴────────────────┴──> cancelled
//
// delivered and cancelled are terminal. Legal edges and the roles allowed to
// take them live in the transition table (see transitions.go), not here.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota

	// Pending is the status checkout creates the order in.
	Pending

	// SellerConfirmed means a seller accepted the order; runners may now claim it.
	SellerConfirmed

	// RunnerAccepted means a runner won the claim and is bound to the order.
	RunnerAccepted

	// Shopping means the runner is collecting items from sellers.
	Shopping

	// ReadyForPickup means every item is collected and a courier may claim the order.
	ReadyForPickup

	// InTransit means the courier took custody after the verified handover.
	InTransit

	// Delivered is terminal.
	Delivered

	// Cancelled is terminal and reachable from every non-terminal status.
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:         "unknown",
		Pending:         "pending",
		SellerConfirmed: "seller_confirmed",
		RunnerAccepted:  "runner_accepted",
		Shopping:        "shopping",
		ReadyForPickup:  "ready_for_pickup",
		InTransit:       "in_transit",
		Delivered:       "delivered",
		Cancelled:       "cancelled",
	}
}

// Statuses lists every valid status in topological order.
func Statuses() []Status {
	return []Status{Pending, SellerConfirmed, RunnerAccepted, Shopping, ReadyForPickup, InTransit, Delivered, Cancelled}
}

// ParseStatus converts the wire/persistence name back into a Status.
//
// Example:
//
//	target, err := order.ParseStatus("seller_confirmed")
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String implements fmt.Stringer; invalid values render as "unknown".
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IsTerminal reports whether no edge leaves s.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// requiresRunner reports whether a runner must be bound in status s on the
// forward path. Cancelled is excluded because it may be reached before or
// after a claim.
func (s Status) requiresRunner() bool {
	return s >= RunnerAccepted && s <= Delivered
}

// requiresCourier reports whether a courier must be bound in status s.
func (s Status) requiresCourier() bool {
	return s == InTransit || s == Delivered
}

// allowsCourier reports whether a courier may be bound in status s.
func (s Status) allowsCourier() bool {
	return s == ReadyForPickup || s == InTransit || s == Delivered || s == Cancelled
}
