package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/ports"
)

// RelayEventsCommandHandler moves committed events from the outbox to two
// sinks, each with its own cursor.
//
// The stream pass marks a batch streamed and commits before handing it to the
// live stream, so every event reaches live subscribers at most once. The
// broker pass publishes in order and marks what the broker acknowledged;
// events after a failure stay unpublished for the next run. Rows are locked
// with SKIP LOCKED so several relays never hand out the same event. Without a
// broker the broker pass only stamps events published so they can be purged.
type RelayEventsCommandHandler struct {
	uowFactory OutboxUoWFactory
	stream     ports.EventPublisher
	broker     ports.EventPublisher
}

// NewRelayEventsCommandHandler accepts a nil broker.
func NewRelayEventsCommandHandler(
	uowFactory OutboxUoWFactory,
	stream ports.EventPublisher,
	broker ports.EventPublisher,
) RelayEventsCommandHandler {
	return RelayEventsCommandHandler{
		uowFactory: uowFactory,
		stream:     stream,
		broker:     broker,
	}
}

// Handle returns the larger of the two pass counts, so a caller can tell
// whether either cursor still had a full batch waiting.
func (h RelayEventsCommandHandler) Handle(ctx context.Context, cmd RelayEventsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	streamed, streamErr := h.relayToStream(ctx, cmd.BatchSize())
	published, publishErr := h.relayToBroker(ctx, cmd.BatchSize())

	return max(streamed, published), errors.Join(streamErr, publishErr)
}

func (h RelayEventsCommandHandler) relayToStream(ctx context.Context, batchSize int) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()
	events, err := outbox.FetchUnstreamed(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	if err = outbox.MarkStreamed(ctx, eventIDs(events), time.Now()); err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	var errList []error
	for _, event := range events {
		if err = h.stream.OnOrderEvent(ctx, event); err != nil {
			errList = append(errList, fmt.Errorf("stream event %s: %w", event.ID, err))
		}
	}
	return len(events), errors.Join(errList...)
}

func (h RelayEventsCommandHandler) relayToBroker(ctx context.Context, batchSize int) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	outbox := uow.OutboxRepository()
	events, err := outbox.FetchUnpublished(ctx, batchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]order.Event, 0, len(events))
	var publishErr error
	for _, event := range events {
		if h.broker != nil {
			if publishErr = h.broker.OnOrderEvent(ctx, event); publishErr != nil {
				publishErr = fmt.Errorf("publish event %s: %w", event.ID, publishErr)
				break
			}
		}
		published = append(published, event)
	}

	if len(published) > 0 {
		if err = outbox.MarkPublished(ctx, eventIDs(published), time.Now()); err != nil {
			return 0, err
		}
		if err = uow.Commit(ctx); err != nil {
			return 0, err
		}
	}

	return len(published), publishErr
}

func eventIDs(events []order.Event) []kernel.UUID {
	ids := make([]kernel.UUID, 0, len(events))
	for _, event := range events {
		ids = append(ids, event.ID)
	}
	return ids
}
