package ports

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
)

// OutboxRepository holds lifecycle events written in the same transaction as
// the change that raised them. Each event carries two delivery stamps: streamed
// (handed to live subscribers) and published (acknowledged by the broker). The
// two advance independently, so a broker outage neither repeats nor holds back
// live delivery.
type OutboxRepository interface {
	// Append stores events as neither streamed nor published.
	Append(ctx context.Context, events []order.Event) error

	// FetchUnstreamed locks up to limit events not yet streamed, oldest
	// first, skipping rows another relay holds.
	FetchUnstreamed(ctx context.Context, limit int) ([]order.Event, error)

	// MarkStreamed stamps the events as streamed at at.
	MarkStreamed(ctx context.Context, ids []kernel.UUID, at time.Time) error

	// FetchUnpublished locks up to limit unpublished events, oldest first,
	// skipping rows another relay holds.
	FetchUnpublished(ctx context.Context, limit int) ([]order.Event, error)

	// MarkPublished stamps the events as published at at.
	MarkPublished(ctx context.Context, ids []kernel.UUID, at time.Time) error

	// PurgePublished deletes events streamed and published before cutoff.
	PurgePublished(ctx context.Context, cutoff time.Time) (int64, error)
}
