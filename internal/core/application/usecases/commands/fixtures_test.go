package commands_test

import (
	"context"
	"testing"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cast struct {
	buyer   order.Actor
	seller  order.Actor
	runner  order.Actor
	courier order.Actor
	itemID  kernel.UUID
}

func newCast() cast {
	return cast{
		buyer:   order.Actor{ID: kernel.NewUUID(), Role: order.Buyer},
		seller:  order.Actor{ID: kernel.NewUUID(), Role: order.Seller},
		runner:  order.Actor{ID: kernel.NewUUID(), Role: order.Runner},
		courier: order.Actor{ID: kernel.NewUUID(), Role: order.Courier},
		itemID:  kernel.NewUUID(),
	}
}

type orderOption func(s *order.Snapshot, ready, collected *bool)

func withCourier(id kernel.UUID) orderOption {
	return func(s *order.Snapshot, _, _ *bool) { s.CourierID = id.Ptr() }
}

func runnerVerified() orderOption {
	return func(s *order.Snapshot, _, _ *bool) { s.RunnerVerified = true }
}

func courierVerified() orderOption {
	return func(s *order.Snapshot, _, _ *bool) { s.CourierVerified = true }
}

func itemReady() orderOption {
	return func(_ *order.Snapshot, ready, _ *bool) { *ready = true }
}

func itemCollected() orderOption {
	return func(_ *order.Snapshot, ready, collected *bool) { *ready, *collected = true, true }
}

// order restores a one-item order at status, binding the runner whenever the
// status requires one.
func (c cast) order(t *testing.T, status order.Status, opts ...orderOption) *order.Order {
	t.Helper()
	price, err := kernel.MoneyFromString("6.00")
	require.NoError(t, err)
	fees, err := order.NewFees(price, kernel.ZeroMoney(), kernel.ZeroMoney(), kernel.ZeroMoney())
	require.NoError(t, err)
	address, err := kernel.NewAddress("3 Liberation Rd", "Accra", "")
	require.NoError(t, err)

	s := order.Snapshot{
		ID:        kernel.NewUUID(),
		BuyerID:   c.buyer.ID,
		Status:    status,
		Fees:      fees,
		Address:   address,
		CreatedAt: time.Now(),
	}
	if status >= order.RunnerAccepted && status <= order.Delivered {
		s.RunnerID = c.runner.ID.Ptr()
	}
	if status == order.InTransit || status == order.Delivered {
		s.CourierID = c.courier.ID.Ptr()
	}

	var ready, collected bool
	for _, opt := range opts {
		opt(&s, &ready, &collected)
	}
	item, err := order.RestoreItem(c.itemID, kernel.NewUUID(), c.seller.ID, 1, price, "", ready, collected)
	require.NoError(t, err)
	s.Items = []*order.Item{item}

	o, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}

// beginUoW wires a unit of work that begins and always rolls back on exit.
func beginUoW(ctx context.Context) *MockUoW {
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	return uow
}

func anyOrder() any {
	return mock.AnythingOfType("*order.Order")
}
