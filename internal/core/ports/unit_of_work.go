package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork per request.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Events raised by aggregates
// written through its repositories are appended to the outbox inside Commit,
// before the transaction commits.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit flushes tracked aggregate events to the outbox and commits.
	Commit(ctx context.Context) error

	// Rollback discards the transaction and tracked events.
	Rollback(ctx context.Context) error

	// OrderRepository returns a repository bound to the current transaction.
	OrderRepository() OrderRepository

	// ChallengeRepository returns a repository bound to the current transaction.
	ChallengeRepository() ChallengeRepository

	// OutboxRepository returns a repository bound to the current transaction.
	OutboxRepository() OutboxRepository
}
