package handover

import (
	"fmt"

	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"
)

// Stage names one of the two physical custody transfers of an order.
type Stage int

const (
	StageUnknown Stage = iota
	// SellerToRunner: the runner shows a code, the seller submits it.
	SellerToRunner
	// RunnerToCourier: the courier shows a code, the runner submits it.
	RunnerToCourier
)

func getStageStrings() map[Stage]string {
	return map[Stage]string{
		StageUnknown:    "unknown",
		SellerToRunner:  order.StageSellerToRunner,
		RunnerToCourier: order.StageRunnerToCourier,
	}
}

// ParseStage accepts "seller_to_runner" or "runner_to_courier".
func ParseStage(s string) (Stage, error) {
	for stage, name := range getStageStrings() {
		if stage != StageUnknown && name == s {
			return stage, nil
		}
	}
	return StageUnknown, errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%q is not a handover stage", s))
}

func (s Stage) Validate() error {
	if s != SellerToRunner && s != RunnerToCourier {
		return errs.NewValueIsInvalidErrorWithCause("stage", fmt.Errorf("%d is not a handover stage", s))
	}
	return nil
}

func (s Stage) String() string {
	if str, ok := getStageStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// IssuerRole is the role that requests and displays the code.
func (s Stage) IssuerRole() order.Role {
	if s == RunnerToCourier {
		return order.Courier
	}
	return order.Runner
}

// VerifierRole is the role that submits the displayed code.
func (s Stage) VerifierRole() order.Role {
	if s == RunnerToCourier {
		return order.Runner
	}
	return order.Seller
}

// IsVerified reports whether the order already carries this stage's flag.
func (s Stage) IsVerified(o *order.Order) bool {
	if s == RunnerToCourier {
		return o.IsCourierVerified()
	}
	return o.IsRunnerVerified()
}

// IsOpen reports whether the order's status admits this handover.
func (s Stage) IsOpen(status order.Status) bool {
	switch s {
	case SellerToRunner:
		return status == order.RunnerAccepted || status == order.Shopping
	case RunnerToCourier:
		return status == order.ReadyForPickup
	default:
		return false
	}
}
