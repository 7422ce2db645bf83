package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"
	"kayayo/internal/pkg/errs"
)

// ErrChallengeConflict is returned when a concurrent issuer won the insert
// with a challenge this requester cannot display.
var ErrChallengeConflict = errors.New("handover challenge issued concurrently")

// IssueHandoverChallengeCommandHandler returns the code the requester should
// display. While a challenge is open, unexpired and not burned the same code
// comes back on every call; otherwise a fresh code replaces it.
type IssueHandoverChallengeCommandHandler struct {
	uowFactory HandoverUoWFactory
	guard      services.OwnershipGuard
	policy     handover.Policy
	generate   func() (handover.Code, error)
}

func NewIssueHandoverChallengeCommandHandler(
	uowFactory HandoverUoWFactory,
	guard services.OwnershipGuard,
	policy handover.Policy,
) IssueHandoverChallengeCommandHandler {
	return IssueHandoverChallengeCommandHandler{
		uowFactory: uowFactory,
		guard:      guard,
		policy:     policy,
		generate:   handover.GenerateCode,
	}
}

// Handle returns the open challenge, issuing it if needed.
func (h IssueHandoverChallengeCommandHandler) Handle(
	ctx context.Context,
	cmd IssueHandoverChallengeCommand,
) (*handover.Challenge, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	stage, requester := cmd.Stage(), cmd.Requester()
	if err = h.guard.CheckHandoverIssuer(o, stage, requester); err != nil {
		return nil, err
	}
	if stage.IsVerified(o) {
		return nil, handover.ErrStageAlreadyVerified
	}
	if !stage.IsOpen(o.Status()) {
		return nil, order.NewInvalidTransitionError(o.ID(), o.Status(), o.Status(),
			fmt.Sprintf("%s handover is not open", stage))
	}

	challengeRepo := uow.ChallengeRepository()
	now := time.Now()

	existing, err := challengeRepo.GetOpen(ctx, o.ID(), stage)
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
	case err != nil:
		return nil, err
	case existing.CanBeRedisplayed(requester.ID, now, h.policy):
		if err = uow.Commit(ctx); err != nil {
			return nil, err
		}
		return existing, nil
	default:
		if err = challengeRepo.Delete(ctx, existing.ID()); err != nil {
			return nil, err
		}
	}

	code, err := h.generate()
	if err != nil {
		return nil, err
	}
	challenge, err := handover.NewChallenge(o.ID(), stage, requester.ID, code, now, h.policy.TTL)
	if err != nil {
		return nil, err
	}

	inserted, err := challengeRepo.Add(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if !inserted {
		winner, err := challengeRepo.GetOpen(ctx, o.ID(), stage)
		if err != nil {
			return nil, err
		}
		if !winner.CanBeRedisplayed(requester.ID, now, h.policy) {
			return nil, ErrChallengeConflict
		}
		challenge = winner
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return challenge, nil
}
