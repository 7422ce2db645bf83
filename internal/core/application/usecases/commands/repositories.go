// Package commands contains the use cases that change order state: the state
// authority, the assignment claimer, the handover verifier, item flag updates,
// checkout hand-off, and the outbox relay and purge maintenance.
// Every handler opens its own unit of work, never retries, and rolls back on
// any failure.
package commands

import (
	"context"

	"kayayo/internal/core/ports"
)

// Unit of Work interfaces narrowed to the repositories each handler needs.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// ChallengeRepoFactory provides the challenge repository within a transaction.
	ChallengeRepoFactory interface {
		ChallengeRepository() ports.ChallengeRepository
	}

	// OutboxRepoFactory provides the outbox repository within a transaction.
	OutboxRepoFactory interface {
		OutboxRepository() ports.OutboxRepository
	}

	// OrderUoW serves handlers that only touch orders.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// HandoverUoW serves the handover issuer and verifier, which change an
	// order and its challenge in one transaction.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   o, err := uow.OrderRepository().Get(ctx, orderID)
	//   c, err := uow.ChallengeRepository().GetOpen(ctx, orderID, stage)
	//   // ... verify and persist both
	//
	//   err = uow.Commit(ctx)
	HandoverUoW interface {
		TxManager
		OrderRepoFactory
		ChallengeRepoFactory
	}

	// HandoverUoWFactory creates new handover unit of work instances.
	HandoverUoWFactory interface {
		Create() HandoverUoW
	}

	// OutboxUoW serves the event relay.
	OutboxUoW interface {
		TxManager
		OutboxRepoFactory
	}

	// OutboxUoWFactory creates new outbox unit of work instances.
	OutboxUoWFactory interface {
		Create() OutboxUoW
	}

	// PurgeUoW serves housekeeping over challenges and the outbox.
	PurgeUoW interface {
		TxManager
		ChallengeRepoFactory
		OutboxRepoFactory
	}

	// PurgeUoWFactory creates new purge unit of work instances.
	PurgeUoWFactory interface {
		Create() PurgeUoW
	}
)
