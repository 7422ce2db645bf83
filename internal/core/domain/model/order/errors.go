package order

import (
	"errors"
	"fmt"

	"kayayo/internal/core/domain/model/kernel"
)

var (
	// ErrInvalidTransition means the requested edge is not legal from the
	// persisted status. Retrying after a fresh read may succeed.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnauthorized means the caller's role or identity may not take the action.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrAlreadyClaimed means the runner or courier slot is already bound.
	ErrAlreadyClaimed = errors.New("already claimed")

	// ErrOrderIsNotConstructed is returned for an Order built without NewOrder/RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("order must be created via NewOrder or RestoreOrder")
)

// InvalidTransitionError carries the rejected edge and why it was rejected.
type InvalidTransitionError struct {
	OrderID kernel.UUID
	From    Status
	To      Status
	Reason  string
}

func NewInvalidTransitionError(orderID kernel.UUID, from, to Status, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{OrderID: orderID, From: from, To: to, Reason: reason}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: order %s %s -> %s", ErrInvalidTransition, e.OrderID, e.From, e.To)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// UnauthorizedError identifies the caller that was turned away.
type UnauthorizedError struct {
	OrderID kernel.UUID
	Actor   Actor
	Reason  string
}

func NewUnauthorizedError(orderID kernel.UUID, actor Actor, reason string) *UnauthorizedError {
	return &UnauthorizedError{OrderID: orderID, Actor: actor, Reason: reason}
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("%s: %s on order %s: %s", ErrUnauthorized, e.Actor, e.OrderID, e.Reason)
}

func (e *UnauthorizedError) Unwrap() error {
	return ErrUnauthorized
}

// AlreadyClaimedError is returned to every claimer but the winner.
type AlreadyClaimedError struct {
	OrderID kernel.UUID
	Slot    Role
}

func NewAlreadyClaimedError(orderID kernel.UUID, slot Role) *AlreadyClaimedError {
	return &AlreadyClaimedError{OrderID: orderID, Slot: slot}
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("%s: %s slot of order %s", ErrAlreadyClaimed, e.Slot, e.OrderID)
}

func (e *AlreadyClaimedError) Unwrap() error {
	return ErrAlreadyClaimed
}
