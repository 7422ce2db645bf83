package commands

import (
	"errors"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/guard"
)

var ErrIssueHandoverChallengeCommandIsNotConstructed = errors.New(
	"IssueHandoverChallengeCommand must be created via NewIssueHandoverChallengeCommand constructor",
)

// IssueHandoverChallengeCommand is a "show my code" request.
type IssueHandoverChallengeCommand struct { //nolint:recvcheck //using for validation
	orderID   kernel.UUID
	stage     handover.Stage
	requester order.Actor

	guard guard.ConstructorGuard
}

func NewIssueHandoverChallengeCommand(
	orderID kernel.UUID,
	stage handover.Stage,
	requester order.Actor,
) (IssueHandoverChallengeCommand, error) {
	requester, actorErr := order.NewActor(requester.ID, requester.Role)
	if err := errors.Join(orderID.Validate(), stage.Validate(), actorErr); err != nil {
		return IssueHandoverChallengeCommand{}, err
	}
	return IssueHandoverChallengeCommand{
		orderID:   orderID,
		stage:     stage,
		requester: requester,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c IssueHandoverChallengeCommand) Validate() error {
	return c.guard.Validate(ErrIssueHandoverChallengeCommandIsNotConstructed)
}

func (c IssueHandoverChallengeCommand) OrderID() kernel.UUID   { return c.orderID }
func (c IssueHandoverChallengeCommand) Stage() handover.Stage  { return c.stage }
func (c IssueHandoverChallengeCommand) Requester() order.Actor { return c.requester }
