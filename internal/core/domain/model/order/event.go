package order

import (
	"time"

	"kayayo/internal/core/domain/model/kernel"
)

// EventKind classifies a lifecycle event.
type EventKind string

const (
	EventOrderCreated     EventKind = "order_created"
	EventStatusChanged    EventKind = "status_changed"
	EventRunnerAssigned   EventKind = "runner_assigned"
	EventCourierAssigned  EventKind = "courier_assigned"
	EventHandoverVerified EventKind = "handover_verified"
)

// Handover stage names carried by EventHandoverVerified.
const (
	StageSellerToRunner  = "seller_to_runner"
	StageRunnerToCourier = "runner_to_courier"
)

// Event is emitted by the aggregate for every committed change that parties
// must hear about. Recipients are computed at emission time as buyer, runner
// and courier minus the empty slots.
type Event struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	Kind           EventKind
	Status         Status
	PreviousStatus Status
	Stage          string
	Actor          Actor
	Recipients     []kernel.UUID
	OccurredAt     time.Time
}
