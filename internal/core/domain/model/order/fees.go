package order

import (
	"errors"
	"fmt"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrFeesAreNotConstructed is returned for Fees built without NewFees.
var ErrFeesAreNotConstructed = errors.New("fees must be created via NewFees or FeeSchedule.Apply")

// Fees is the monetary breakdown fixed at checkout.
type Fees struct { //nolint:recvcheck //using for validation
	itemsTotal  kernel.Money
	runnerFee   kernel.Money
	deliveryFee kernel.Money
	platformFee kernel.Money
	guard       guard.ConstructorGuard
}

// NewFees validates every component.
func NewFees(itemsTotal, runnerFee, deliveryFee, platformFee kernel.Money) (Fees, error) {
	if err := errors.Join(
		itemsTotal.Validate(),
		runnerFee.Validate(),
		deliveryFee.Validate(),
		platformFee.Validate(),
	); err != nil {
		return Fees{}, errs.NewValueIsInvalidErrorWithCause("fees", err)
	}
	return Fees{
		itemsTotal:  itemsTotal,
		runnerFee:   runnerFee,
		deliveryFee: deliveryFee,
		platformFee: platformFee,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

func (f Fees) Validate() error {
	return f.guard.Validate(ErrFeesAreNotConstructed)
}

func (f Fees) ItemsTotal() kernel.Money  { return f.itemsTotal }
func (f Fees) RunnerFee() kernel.Money   { return f.runnerFee }
func (f Fees) DeliveryFee() kernel.Money { return f.deliveryFee }
func (f Fees) PlatformFee() kernel.Money { return f.platformFee }

// Total is what the buyer pays.
func (f Fees) Total() kernel.Money {
	return f.itemsTotal.Add(f.runnerFee).Add(f.deliveryFee).Add(f.platformFee)
}

// FeeSchedule prices an order from its items total: flat runner and delivery
// fees plus a platform percentage of the items total.
type FeeSchedule struct {
	RunnerFee          kernel.Money
	DeliveryFee        kernel.Money
	PlatformFeePercent decimal.Decimal
}

// Apply computes the fees for itemsTotal.
func (s FeeSchedule) Apply(itemsTotal kernel.Money) (Fees, error) {
	if s.PlatformFeePercent.IsNegative() || s.PlatformFeePercent.GreaterThan(decimal.NewFromInt(100)) {
		return Fees{}, errs.NewValueIsOutOfRangeError("platform fee percent", s.PlatformFeePercent.String(), 0, 100)
	}
	if err := errors.Join(s.RunnerFee.Validate(), s.DeliveryFee.Validate()); err != nil {
		return Fees{}, errs.NewValueIsInvalidErrorWithCause("fee schedule", fmt.Errorf("incomplete schedule: %w", err))
	}
	return NewFees(itemsTotal, s.RunnerFee, s.DeliveryFee, itemsTotal.Percent(s.PlatformFeePercent))
}
