package ports

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
)

// ChallengeRepository stores handover challenges. At most one open
// (unconsumed) challenge exists per (order, stage).
type ChallengeRepository interface {
	// GetOpen returns the unconsumed challenge for (order, stage), or
	// errs.ErrObjectNotFound.
	GetOpen(ctx context.Context, orderID kernel.UUID, stage handover.Stage) (*handover.Challenge, error)

	// Add inserts c. It reports false, without error, when another open
	// challenge for the same (order, stage) won the insert.
	Add(ctx context.Context, c *handover.Challenge) (bool, error)

	// Delete removes a superseded open challenge (expired or burned).
	Delete(ctx context.Context, id kernel.UUID) error

	// RecordFailure persists failed attempts and cooldown.
	RecordFailure(ctx context.Context, c *handover.Challenge) error

	// Consume marks c consumed if it is still open, unexpired and holds the
	// same code at write time. It reports whether the write happened.
	Consume(ctx context.Context, c *handover.Challenge) (bool, error)

	// PurgeExpired deletes unconsumed challenges that expired before cutoff.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
