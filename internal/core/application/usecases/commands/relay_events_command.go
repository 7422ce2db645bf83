package commands

import (
	"errors"

	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

var ErrRelayEventsCommandIsNotConstructed = errors.New(
	"RelayEventsCommand must be created via NewRelayEventsCommand constructor",
)

// RelayEventsCommand publishes up to BatchSize committed outbox events.
type RelayEventsCommand struct {
	batchSize int

	guard guard.ConstructorGuard
}

func NewRelayEventsCommand(batchSize int) (RelayEventsCommand, error) {
	if batchSize <= 0 || batchSize > 1000 {
		return RelayEventsCommand{}, errs.NewValueIsOutOfRangeError("batch size", batchSize, 1, 1000)
	}
	return RelayEventsCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c RelayEventsCommand) Validate() error {
	return c.guard.Validate(ErrRelayEventsCommandIsNotConstructed)
}

func (c RelayEventsCommand) BatchSize() int {
	return c.batchSize
}
