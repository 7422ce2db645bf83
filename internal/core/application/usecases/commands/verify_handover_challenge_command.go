package commands

import (
	"errors"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrVerifyHandoverChallengeCommandIsNotConstructed = errors.New(
	"VerifyHandoverChallengeCommand must be created via NewVerifyHandoverChallengeCommand constructor",
)

// VerifyHandoverChallengeCommand submits the code the counterparty displayed.
type VerifyHandoverChallengeCommand struct { //nolint:recvcheck //using for validation
	orderID  kernel.UUID
	stage    handover.Stage
	code     handover.Code
	verifier order.Actor

	guard guard.ConstructorGuard
}

func NewVerifyHandoverChallengeCommand(
	orderID kernel.UUID,
	stage handover.Stage,
	code string,
	verifier order.Actor,
) (VerifyHandoverChallengeCommand, error) {
	parsed, codeErr := handover.CodeFromString(code)
	verifier, actorErr := order.NewActor(verifier.ID, verifier.Role)
	if err := errors.Join(orderID.Validate(), stage.Validate(), codeErr, actorErr); err != nil {
		return VerifyHandoverChallengeCommand{}, err
	}
	return VerifyHandoverChallengeCommand{
		orderID:  orderID,
		stage:    stage,
		code:     parsed,
		verifier: verifier,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c VerifyHandoverChallengeCommand) Validate() error {
	return c.guard.Validate(ErrVerifyHandoverChallengeCommandIsNotConstructed)
}

func (c VerifyHandoverChallengeCommand) OrderID() kernel.UUID  { return c.orderID }
func (c VerifyHandoverChallengeCommand) Stage() handover.Stage { return c.stage }
func (c VerifyHandoverChallengeCommand) Code() handover.Code   { return c.code }
func (c VerifyHandoverChallengeCommand) Verifier() order.Actor { return c.verifier }
