package commands

import (
	"context"
	"errors"
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"
	"kayayo/internal/core/ports"
	"kayayo/internal/pkg/errs"
)

// VerifyHandoverChallengeCommandHandler checks a submitted code.
//
// A wrong code is still committed (failed attempt and cooldown) before the
// error is returned, so guessing is rate limited across requests. A matching
// code is consumed with a write that re-checks the challenge at commit time,
// then the order's handover flag is set and a handover_verified event is
// recorded in the same transaction. Replaying a consumed code fails with
// handover.ErrNoChallengeIssued.
type VerifyHandoverChallengeCommandHandler struct {
	uowFactory HandoverUoWFactory
	guard      services.OwnershipGuard
	policy     handover.Policy
}

func NewVerifyHandoverChallengeCommandHandler(
	uowFactory HandoverUoWFactory,
	guard services.OwnershipGuard,
	policy handover.Policy,
) VerifyHandoverChallengeCommandHandler {
	return VerifyHandoverChallengeCommandHandler{
		uowFactory: uowFactory,
		guard:      guard,
		policy:     policy,
	}
}

// Handle verifies the code and returns the updated order.
func (h VerifyHandoverChallengeCommandHandler) Handle(
	ctx context.Context,
	cmd VerifyHandoverChallengeCommand,
) (*order.Order, error) {
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

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.Get(ctx, cmd.OrderID())
	if err != nil {
		return nil, err
	}

	stage, verifier := cmd.Stage(), cmd.Verifier()
	if err = h.guard.CheckHandoverVerifier(o, stage, verifier); err != nil {
		return nil, err
	}
	if stage.IsVerified(o) {
		// The stage's code was consumed; a replay finds nothing open.
		return nil, handover.ErrNoChallengeIssued
	}
	if stage == handover.SellerToRunner && !o.SellerItemsReady(verifier.ID) {
		return nil, order.NewInvalidTransitionError(o.ID(), o.Status(), o.Status(), "seller items are not all ready")
	}

	challengeRepo := uow.ChallengeRepository()
	challenge, err := challengeRepo.GetOpen(ctx, o.ID(), stage)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return nil, handover.ErrNoChallengeIssued
	}
	if err != nil {
		return nil, err
	}

	now := time.Now()
	attempts := challenge.FailedAttempts()
	if verifyErr := challenge.Verify(cmd.Code(), verifier.ID, now, h.policy); verifyErr != nil {
		if challenge.FailedAttempts() == attempts {
			return nil, verifyErr
		}
		if err = challengeRepo.RecordFailure(ctx, challenge); err != nil {
			return nil, err
		}
		if err = uow.Commit(ctx); err != nil {
			return nil, err
		}
		return nil, verifyErr
	}

	consumed, err := challengeRepo.Consume(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, classifyLostConsume(ctx, challengeRepo, o, stage, now)
	}

	from := o.Status()
	if stage == handover.SellerToRunner {
		err = o.MarkRunnerVerified(verifier, now)
	} else {
		err = o.MarkCourierVerified(verifier, now)
	}
	if err != nil {
		return nil, err
	}

	updated, err := orderRepo.UpdateIfStatus(ctx, o, from)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, order.NewInvalidTransitionError(o.ID(), from, from, "order changed concurrently")
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}

// classifyLostConsume explains a consume that affected no row: the challenge
// expired or was consumed by a concurrent verifier since it was read.
func classifyLostConsume(
	ctx context.Context,
	challengeRepo ports.ChallengeRepository,
	o *order.Order,
	stage handover.Stage,
	now time.Time,
) error {
	current, err := challengeRepo.GetOpen(ctx, o.ID(), stage)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return handover.ErrNoChallengeIssued
	}
	if err != nil {
		return err
	}
	if current.IsExpired(now) {
		return handover.ErrChallengeExpired
	}
	return handover.ErrNoChallengeIssued
}
