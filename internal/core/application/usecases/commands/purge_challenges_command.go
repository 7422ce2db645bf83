package commands

import (
	"errors"
	"time"

	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

var ErrPurgeChallengesCommandIsNotConstructed = errors.New(
	"PurgeChallengesCommand must be created via NewPurgeChallengesCommand constructor",
)

// PurgeChallengesCommand removes long-expired unconsumed challenges and old
// published outbox rows. Verification never depends on it: expiry is checked
// when a code is submitted.
type PurgeChallengesCommand struct {
	challengeRetention time.Duration
	outboxRetention    time.Duration

	guard guard.ConstructorGuard
}

func NewPurgeChallengesCommand(challengeRetention, outboxRetention time.Duration) (PurgeChallengesCommand, error) {
	if challengeRetention <= 0 {
		return PurgeChallengesCommand{}, errs.NewValueIsInvalidError("challenge retention must be positive")
	}
	if outboxRetention <= 0 {
		return PurgeChallengesCommand{}, errs.NewValueIsInvalidError("outbox retention must be positive")
	}
	return PurgeChallengesCommand{
		challengeRetention: challengeRetention,
		outboxRetention:    outboxRetention,
		guard:              guard.NewConstructorGuard(),
	}, nil
}

func (c PurgeChallengesCommand) Validate() error {
	return c.guard.Validate(ErrPurgeChallengesCommandIsNotConstructed)
}

func (c PurgeChallengesCommand) ChallengeRetention() time.Duration { return c.challengeRetention }
func (c PurgeChallengesCommand) OutboxRetention() time.Duration    { return c.outboxRetention }
