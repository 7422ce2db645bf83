package commands

import (
	"context"
	"time"
)

// PurgeResult counts deleted rows.
type PurgeResult struct {
	Challenges int64
	Events     int64
}

type PurgeChallengesCommandHandler struct {
	uowFactory PurgeUoWFactory
}

func NewPurgeChallengesCommandHandler(uowFactory PurgeUoWFactory) PurgeChallengesCommandHandler {
	return PurgeChallengesCommandHandler{uowFactory: uowFactory}
}

func (h PurgeChallengesCommandHandler) Handle(ctx context.Context, cmd PurgeChallengesCommand) (PurgeResult, error) {
	if err := cmd.Validate(); err != nil {
		return PurgeResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return PurgeResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now()
	challenges, err := uow.ChallengeRepository().PurgeExpired(ctx, now.Add(-cmd.ChallengeRetention()))
	if err != nil {
		return PurgeResult{}, err
	}

	events, err := uow.OutboxRepository().PurgePublished(ctx, now.Add(-cmd.OutboxRetention()))
	if err != nil {
		return PurgeResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return PurgeResult{}, err
	}

	return PurgeResult{Challenges: challenges, Events: events}, nil
}
